package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")

	cfg, err := New(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.ExternalURL)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, uint64(250), cfg.DefaultTimeout)
	assert.Empty(t, cfg.HostSChainNode)
	assert.Equal(t, "http://ib.adnxs.com/openrtb2", cfg.Adapters["appnexus"].Endpoint)
}

func TestValidateRejectsEnabledAdapterWithoutEndpoint(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("adapters.appnexus.endpoint", "")

	_, err := New(v)
	assert.EqualError(t, err, "adapters.appnexus.endpoint is required")
}

func TestValidateAllowsDisabledAdapterWithoutEndpoint(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("adapters.appnexus.endpoint", "")
	v.Set("adapters.appnexus.disabled", true)

	cfg, err := New(v)
	require.NoError(t, err)
	assert.True(t, cfg.Adapters["appnexus"].Disabled)
}

func TestHostSChainNodeOverride(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("host_schain_node", `{"asi":"adlattice.example.com","sid":"00001"}`)

	cfg, err := New(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"asi":"adlattice.example.com","sid":"00001"}`, cfg.HostSChainNode)
}
