package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JIRA_URL", "https://example.atlassian.net/")
	t.Setenv("JIRA_USER_EMAIL", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "super-secret-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", cfg.Jira.URL)
	assert.Equal(t, 100, cfg.Jira.GroupPageSize)
	assert.Equal(t, 1000, cfg.Jira.SearchPageSize)
	assert.Equal(t, 50, cfg.Jira.MaxSearchPages)
	assert.Equal(t, 30*time.Second, cfg.Jira.RequestTimeout)
	assert.Empty(t, cfg.Directory.GroupNames)
	assert.Empty(t, cfg.DomainFilter())
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())

	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.BurstSize)
	assert.Less(t, cfg.RateLimit.RequestsPerSecond, cfg.Jira.RPS)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JIRA_GROUP_NAMES", " engineering , support,,")
	t.Setenv("DOMAIN_FILTER_ENABLED", "true")
	t.Setenv("DOMAIN_FILTER", "apscorp.ca")
	t.Setenv("JIRA_REQUEST_TIMEOUT", "5s")
	t.Setenv("JIRA_SEARCH_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"engineering", "support"}, cfg.Directory.GroupNames)
	assert.Equal(t, "apscorp.ca", cfg.DomainFilter())
	assert.Equal(t, 5*time.Second, cfg.Jira.RequestTimeout)
	assert.Equal(t, 1000, cfg.Jira.SearchPageSize)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("JIRA_URL", "")
	t.Setenv("JIRA_USER_EMAIL", "")
	t.Setenv("JIRA_API_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_URL is required")
	assert.Contains(t, err.Error(), "JIRA_USER_EMAIL is required")
	assert.Contains(t, err.Error(), "JIRA_API_TOKEN is required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Jira: JiraConfig{
				URL:            "https://example.atlassian.net",
				Email:          "bot@example.com",
				APIToken:       "token",
				GroupPageSize:  100,
				SearchPageSize: 1000,
				MaxSearchPages: 50,
			},
			App: AppConfig{Environment: "development"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.Jira.URL = "example.atlassian.net" }, "JIRA_URL must be an absolute URL"},
		{"filter enabled without domain", func(c *Config) { c.Directory.DomainFilterEnabled = true }, "DOMAIN_FILTER is required"},
		{"production without ws origins", func(c *Config) { c.App.Environment = "production" }, "WS_ALLOWED_ORIGINS"},
		{"zero page limit", func(c *Config) { c.Jira.MaxSearchPages = 0 }, "JIRA_MAX_SEARCH_PAGES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString_RedactsToken(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "super-secret-token")
	assert.Contains(t, s, "[REDACTED]")
}
