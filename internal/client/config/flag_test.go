package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10", "-p", "30"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", OnlineCheckInterval: 10 * time.Second, PollInterval: 30 * time.Second}},
		{name: "Test2 incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true, expected: &Config{}},
		{name: "Test3 token, database and limit", args: []string{"cmd", "-t", "tok", "-d", "/tmp/u.db", "-l", "50"}, expectPanic: false,
			expected: &Config{AccessToken: "tok", DatabasePath: "/tmp/u.db", FetchLimit: 50}},
		{name: "Test4 admin identities", args: []string{"cmd", "-A", "alice, bob,,"}, expectPanic: false,
			expected: &Config{AdminIdentities: []string{"alice", "bob"}}},
		{name: "Test5 unknown flags are ignored", args: []string{"cmd", "-x", "1", "-a=host:1"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "host:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
