package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/urgekeeper/internal/flagx"
	"github.com/dmitrijs2005/urgekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server config. Durations accept
// "720h" style strings or integer nanoseconds. Absent keys keep the value
// already present in Config.
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	RateLimit                   *string         `json:"rate_limit"`
	RedisURL                    *string         `json:"redis_url"`
}

// parseJson overlays config with the JSON file named by -c/-config, if any.
// It panics on read or unmarshal errors.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RateLimit, c.RateLimit)
	setString(&config.RedisURL, c.RedisURL)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
