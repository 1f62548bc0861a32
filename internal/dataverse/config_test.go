package dataverse

import (
	"testing"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.URL = "https://contoso.crm.dynamics.com/"
	cfg.TenantID = "tenant-1"
	cfg.ClientID = "client"
	cfg.ClientSecret = "secret"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.URL = "" }, wantErr: common.ErrMissingConfig},
		{name: "relative url", mutate: func(c *Config) { c.URL = "contoso" }, wantErr: common.ErrInvalidConfig},
		{name: "missing secret", mutate: func(c *Config) { c.ClientSecret = "" }, wantErr: common.ErrMissingConfig},
		{name: "missing tenant", mutate: func(c *Config) { c.TenantID = "" }, wantErr: common.ErrMissingConfig},
		{
			name:   "token url replaces tenant",
			mutate: func(c *Config) {
				c.TenantID = ""
				c.TokenURL = "https://login.example.com/token"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Endpoints(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/token", cfg.tokenURL())
	assert.Equal(t, "https://contoso.crm.dynamics.com/.default", cfg.scope())
	assert.Equal(t, "https://contoso.crm.dynamics.com/api/data/v9.2", cfg.apiRoot())
	assert.Equal(t, "promx_budgets", cfg.entitySet())

	cfg.APIVersion = ""
	cfg.EntitySet = "cr_budgets"
	assert.Equal(t, "https://contoso.crm.dynamics.com/api/data/v9.2", cfg.apiRoot())
	assert.Equal(t, "cr_budgets", cfg.entitySet())
}
