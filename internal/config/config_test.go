package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper isolates a test from global viper state and store env vars.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	for _, key := range []string{
		"DATAVERSE_URL", "DATAVERSE_TENANT_ID", "DATAVERSE_CLIENT_ID", "DATAVERSE_CLIENT_SECRET",
		"DATABASE_URL",
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SHEET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadStoreConfig_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := LoadStoreConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, filepath.Join("/data", "budgets", "budgets.db"), cfg.DatabasePath)
}

func TestLoadStoreConfig_Dataverse(t *testing.T) {
	resetViper(t)
	viper.Set("store.backend", "Dataverse")
	viper.Set("store.page_size", 25)
	viper.Set("store.timeout", "5s")
	viper.Set("dataverse.url", "https://contoso.crm.dynamics.com")
	viper.Set("dataverse.tenant_id", "tenant")
	viper.Set("dataverse.client_id", "client")
	t.Setenv("DATAVERSE_CLIENT_SECRET", "from-env")

	cfg, err := LoadStoreConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendDataverse, cfg.Backend)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "from-env", cfg.Dataverse.ClientSecret)
	assert.Equal(t, 5*time.Second, cfg.Dataverse.Timeout)
	assert.Equal(t, "v9.2", cfg.Dataverse.APIVersion)
	assert.Equal(t, "promx_budgets", cfg.Dataverse.EntitySet)
}

func TestLoadStoreConfig_DataverseIncomplete(t *testing.T) {
	resetViper(t)
	viper.Set("store.backend", BackendDataverse)

	_, err := LoadStoreConfig()
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadStoreConfig_PostgresFromEnv(t *testing.T) {
	resetViper(t)
	viper.Set("store.backend", BackendPostgres)
	viper.Set("postgres.max_open_conns", 8)
	t.Setenv("DATABASE_URL", "postgres://budgets@localhost/budgets")

	cfg, err := LoadStoreConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://budgets@localhost/budgets", cfg.Postgres.URL)
	assert.Equal(t, 8, cfg.Postgres.MaxOpenConns)
}

func TestLoadStoreConfig_PostgresMissingURL(t *testing.T) {
	resetViper(t)
	viper.Set("store.backend", BackendPostgres)

	_, err := LoadStoreConfig()
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadStoreConfig_Sheets(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", "/home/tester")
	viper.Set("store.backend", BackendSheets)
	viper.Set("sheets.service_account_path", "~/keys/sa.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-1")

	cfg, err := LoadStoreConfig()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/keys/sa.json", cfg.Sheets.ServiceAccountPath)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Budgets", cfg.Sheets.SheetName)
}

func TestLoadStoreConfig_UnknownBackend(t *testing.T) {
	resetViper(t)
	viper.Set("store.backend", "excel")

	_, err := LoadStoreConfig()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("BUDGETS_DIR", "/srv/budgets")

	tests := map[string]string{
		"":                     "",
		"~":                    "/home/tester",
		"~/budgets.db":         "/home/tester/budgets.db",
		"$BUDGETS_DIR/x.db":    "/srv/budgets/x.db",
		"/absolute/budgets.db": "/absolute/budgets.db",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExpandPath(in), "ExpandPath(%q)", in)
	}
}

func TestDefaultPathsFallBackToHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	assert.Equal(t, "/home/tester/.local/state/budgets/budgets.log", DefaultLogFile())
	assert.Equal(t, "/home/tester/.config/budgets/sheets-token.json", DefaultTokenFile())
}
