package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{input: "", want: DialectSQLite},
		{input: "sqlite3", want: DialectSQLite},
		{input: "Postgres", want: DialectPostgres},
		{input: "pgx", want: DialectPostgres},
		{input: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDialect)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "?", DialectSQLite.placeholder(3))
	assert.Equal(t, "$3", DialectPostgres.placeholder(3))
}

func TestValidateContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
	assert.NoError(t, validateContext(context.Background()))
}

func TestValidatePatch(t *testing.T) {
	assert.NoError(t, validatePatch(service.Patch{model.AttrName: "x", model.AttrOwnerID: "y"}))
	assert.ErrorIs(t, validatePatch(nil), ErrEmptyPatch)
	assert.ErrorIs(t, validatePatch(service.Patch{model.AttrID: "x"}), ErrReadOnlyField)
}

func TestPostgresConfig_Validate(t *testing.T) {
	valid := DefaultPostgresConfig("postgres://localhost/budgets")
	assert.NoError(t, valid.Validate())

	tests := map[string]func(*PostgresConfig){
		"missing url":      func(c *PostgresConfig) { c.URL = "" },
		"zero ping":        func(c *PostgresConfig) { c.PingTimeout = 0 },
		"no open conns":    func(c *PostgresConfig) { c.MaxOpenConns = 0 },
		"idle above open":  func(c *PostgresConfig) { c.MaxIdleConns = c.MaxOpenConns + 1 },
		"negative max age": func(c *PostgresConfig) { c.ConnMaxLifetime = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
