package dataverse

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/service"
)

// Defaults for the Web API endpoint.
const (
	DefaultAPIVersion = "v9.2"
	DefaultEntitySet  = "promx_budgets"
	DefaultTimeout    = 30 * time.Second
)

// Config holds Dataverse connection settings.
type Config struct {
	// URL is the environment root, e.g. https://contoso.crm.dynamics.com.
	URL          string
	TenantID     string
	ClientID     string
	ClientSecret string
	// TokenURL overrides the Azure AD token endpoint derived from TenantID.
	TokenURL   string
	APIVersion string
	EntitySet  string
	Timeout    time.Duration
	Retry      service.RetryOptions
}

// DefaultConfig returns a configuration with defaults filled in.
func DefaultConfig() Config {
	return Config{
		APIVersion: DefaultAPIVersion,
		EntitySet:  DefaultEntitySet,
		Timeout:    DefaultTimeout,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: dataverse url is required", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: dataverse url %q is not absolute", common.ErrInvalidConfig, c.URL)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: dataverse client id and secret are required", common.ErrMissingConfig)
	}
	if c.TenantID == "" && c.TokenURL == "" {
		return fmt.Errorf("%w: dataverse tenant id or token url is required", common.ErrMissingConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: dataverse timeout must be >= 0", common.ErrInvalidConfig)
	}
	return nil
}

// tokenURL returns the OAuth2 token endpoint.
func (c *Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return "https://login.microsoftonline.com/" + url.PathEscape(c.TenantID) + "/oauth2/v2.0/token"
}

// scope returns the client-credentials scope for the environment.
func (c *Config) scope() string {
	return strings.TrimRight(c.URL, "/") + "/.default"
}

// apiRoot returns the Web API root, e.g. https://host/api/data/v9.2.
func (c *Config) apiRoot() string {
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return strings.TrimRight(c.URL, "/") + "/api/data/" + version
}

func (c *Config) entitySet() string {
	if c.EntitySet == "" {
		return DefaultEntitySet
	}
	return c.EntitySet
}
