package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/urgekeeper/internal/flagx"
	"github.com/dmitrijs2005/urgekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the client config, shared by the JSON
// and YAML loaders. Durations accept "60s" style strings or integer
// nanoseconds. Absent keys keep the value already present in Config.
type FileConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"  yaml:"server_endpoint_addr"`
	AccessToken         *string         `json:"access_token"          yaml:"access_token"`
	DatabasePath        *string         `json:"database_path"         yaml:"database_path"`
	PollInterval        *timex.Duration `json:"poll_interval"         yaml:"poll_interval"`
	FetchLimit          *int            `json:"fetch_limit"           yaml:"fetch_limit"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	AdminIdentities     []string        `json:"admin_identities"      yaml:"admin_identities"`
	Debug               *bool           `json:"debug"                 yaml:"debug"`
}

// parseFile overlays cfg with the file named by -c/-config, if any. Files
// ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// It panics on read or unmarshal errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.AccessToken, fc.AccessToken)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	if fc.PollInterval != nil {
		cfg.PollInterval = fc.PollInterval.Duration
	}
	if fc.FetchLimit != nil {
		cfg.FetchLimit = *fc.FetchLimit
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.AdminIdentities != nil {
		cfg.AdminIdentities = fc.AdminIdentities
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
