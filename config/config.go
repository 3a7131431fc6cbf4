package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration holds the process-wide settings, loaded once at startup.
type Configuration struct {
	ExternalURL    string `mapstructure:"external_url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DefaultTimeout uint64 `mapstructure:"default_timeout_ms"`

	// HostSChainNode is a JSON object string like
	// {"asi": "adlattice.example.com", "sid": "00001"} identifying the host
	// company node appended to every resolved supply chain. Empty or
	// unparseable means no host node.
	HostSChainNode string `mapstructure:"host_schain_node"`

	Adapters map[string]Adapter `mapstructure:"adapters"`
}

// Adapter holds the per-bidder endpoint settings.
type Adapter struct {
	Endpoint   string `mapstructure:"endpoint"` // Required
	PlatformID string `mapstructure:"platform_id"`
	Disabled   bool   `mapstructure:"disabled"`
}

// New uses viper to populate our server configuration.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (cfg *Configuration) validate() error {
	for name, adapter := range cfg.Adapters {
		if !adapter.Disabled && adapter.Endpoint == "" {
			return fmt.Errorf("adapters.%s.endpoint is required", name)
		}
	}
	return nil
}

// SetupViper sets the viper defaults and config file locations.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8000")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("default_timeout_ms", 250)
	v.SetDefault("host_schain_node", "")
	v.SetDefault("adapters.appnexus.endpoint", "http://ib.adnxs.com/openrtb2")

	v.AutomaticEnv()
	v.ReadInConfig()
}
