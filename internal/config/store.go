package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/dataverse"
	"github.com/Veraticus/budgets/internal/sheets"
	"github.com/Veraticus/budgets/internal/storage"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendDataverse = "dataverse"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendSheets    = "sheets"
)

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultBackend  = BackendSQLite
	DefaultPageSize = 50
	DefaultTimeout  = 30 * time.Second
)

// StoreConfig selects and configures the budget store.
type StoreConfig struct {
	Backend      string
	DatabasePath string
	Postgres     storage.PostgresConfig
	Sheets       sheets.Config
	Dataverse    dataverse.Config
	PageSize     int
	Timeout      time.Duration
}

// SetDefaults registers the store defaults with viper.
func SetDefaults() {
	viper.SetDefault("store.backend", DefaultBackend)
	viper.SetDefault("store.page_size", DefaultPageSize)
	viper.SetDefault("store.timeout", DefaultTimeout)
	viper.SetDefault("dataverse.api_version", dataverse.DefaultAPIVersion)
	viper.SetDefault("dataverse.entity_set", dataverse.DefaultEntitySet)
	viper.SetDefault("sheets.sheet_name", sheets.DefaultSheetName)
}

// LoadStoreConfig reads the store configuration. It follows this precedence:
// 1. Viper configuration (from config file or BUDGETS_ env vars)
// 2. Direct environment variables (DATAVERSE_*, DATABASE_URL, GOOGLE_SHEETS_*)
// 3. Default values
//
// Only the selected backend is validated.
func LoadStoreConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{
		Backend:  strings.ToLower(strings.TrimSpace(viper.GetString("store.backend"))),
		PageSize: viper.GetInt("store.page_size"),
		Timeout:  viper.GetDuration("store.timeout"),
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: store.timeout must be >= 0", common.ErrInvalidConfig)
	}

	cfg.Dataverse = loadDataverseConfig(cfg.Timeout)
	cfg.DatabasePath = loadDatabasePath()
	cfg.Postgres = loadPostgresConfig()
	cfg.Sheets = LoadSheetsConfig()

	var err error
	switch cfg.Backend {
	case BackendDataverse:
		err = cfg.Dataverse.Validate()
	case BackendSQLite:
		if cfg.DatabasePath == "" {
			err = fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
		}
	case BackendPostgres:
		if cfg.Postgres.URL == "" {
			err = fmt.Errorf("%w: postgres.url or DATABASE_URL is required", common.ErrMissingConfig)
		} else {
			err = cfg.Postgres.Validate()
		}
	case BackendSheets:
		err = cfg.Sheets.Validate()
	default:
		err = fmt.Errorf("%w: unknown store backend %q (want dataverse, sqlite, postgres or sheets)",
			common.ErrInvalidConfig, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDataverseConfig(timeout time.Duration) dataverse.Config {
	cfg := dataverse.DefaultConfig()
	cfg.URL = firstNonEmpty(viper.GetString("dataverse.url"), os.Getenv("DATAVERSE_URL"))
	cfg.TenantID = firstNonEmpty(viper.GetString("dataverse.tenant_id"), os.Getenv("DATAVERSE_TENANT_ID"))
	cfg.ClientID = firstNonEmpty(viper.GetString("dataverse.client_id"), os.Getenv("DATAVERSE_CLIENT_ID"))
	cfg.ClientSecret = firstNonEmpty(viper.GetString("dataverse.client_secret"), os.Getenv("DATAVERSE_CLIENT_SECRET"))
	cfg.TokenURL = viper.GetString("dataverse.token_url")
	if v := viper.GetString("dataverse.api_version"); v != "" {
		cfg.APIVersion = v
	}
	if v := viper.GetString("dataverse.entity_set"); v != "" {
		cfg.EntitySet = v
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg
}

func loadDatabasePath() string {
	if v := viper.GetString("database.path"); v != "" {
		return ExpandPath(v)
	}
	return DefaultDatabasePath()
}

func loadPostgresConfig() storage.PostgresConfig {
	cfg := storage.DefaultPostgresConfig(firstNonEmpty(viper.GetString("postgres.url"), os.Getenv("DATABASE_URL")))
	if viper.IsSet("postgres.max_open_conns") {
		cfg.MaxOpenConns = viper.GetInt("postgres.max_open_conns")
	}
	if viper.IsSet("postgres.max_idle_conns") {
		cfg.MaxIdleConns = viper.GetInt("postgres.max_idle_conns")
	}
	if viper.IsSet("postgres.conn_max_lifetime") {
		cfg.ConnMaxLifetime = viper.GetDuration("postgres.conn_max_lifetime")
	}
	if viper.IsSet("postgres.ping_timeout") {
		cfg.PingTimeout = viper.GetDuration("postgres.ping_timeout")
	}
	return cfg
}

// LoadSheetsConfig reads the Google Sheets settings without validating them.
func LoadSheetsConfig() sheets.Config {
	cfg := sheets.DefaultConfig()
	cfg.ServiceAccountPath = ExpandPath(viper.GetString("sheets.service_account_path"))
	cfg.ClientID = viper.GetString("sheets.client_id")
	cfg.ClientSecret = viper.GetString("sheets.client_secret")
	cfg.RefreshToken = viper.GetString("sheets.refresh_token")
	cfg.TokenFile = ExpandPath(viper.GetString("sheets.token_file"))
	cfg.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	cfg.SheetName = viper.GetString("sheets.sheet_name")

	cfg.LoadFromEnv()
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)
	if cfg.TokenFile == "" && cfg.RefreshToken == "" && cfg.ServiceAccountPath == "" {
		cfg.TokenFile = DefaultTokenFile()
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
