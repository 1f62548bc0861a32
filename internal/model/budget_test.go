package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetFromRecord(t *testing.T) {
	tests := []struct {
		rec  map[string]any
		name string
		want Budget
	}{
		{
			name: "all attributes as strings",
			rec: map[string]any{
				AttrID:             "b-1",
				AttrName:           "Marketing",
				AttrBudgetConsumed: "150",
				AttrOwnerID:        "owner-1",
			},
			want: Budget{ID: "b-1", Name: "Marketing", BudgetConsumed: "150", OwnerID: "owner-1"},
		},
		{
			name: "missing and null attributes default to empty",
			rec: map[string]any{
				AttrID:   "b-2",
				AttrName: nil,
			},
			want: Budget{ID: "b-2"},
		},
		{
			name: "json number is canonicalized",
			rec: map[string]any{
				AttrID:             "b-3",
				AttrBudgetConsumed: json.Number("42.50"),
			},
			want: Budget{ID: "b-3", BudgetConsumed: "42.5"},
		},
		{
			name: "json number beyond the amount range keeps its text",
			rec: map[string]any{
				AttrID:             "b-6",
				AttrBudgetConsumed: json.Number("1e90000000"),
			},
			want: Budget{ID: "b-6", BudgetConsumed: "1e90000000"},
		},
		{
			name: "float and int values",
			rec: map[string]any{
				AttrID:             "b-4",
				AttrBudgetConsumed: float64(12.25),
				AttrOwnerID:        int64(7),
			},
			want: Budget{ID: "b-4", BudgetConsumed: "12.25", OwnerID: "7"},
		},
		{
			name: "decimal and bytes",
			rec: map[string]any{
				AttrID:             []byte("b-5"),
				AttrBudgetConsumed: decimal.RequireFromString("3.000"),
			},
			want: Budget{ID: "b-5", BudgetConsumed: "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetFromRecord(tt.rec))
		})
	}
}

func TestBudget_GetSet(t *testing.T) {
	b := Budget{ID: "b-1", Name: "Ops", BudgetConsumed: "10", OwnerID: "o"}

	assert.Equal(t, "Ops", b.Get(FieldName))
	assert.Equal(t, "10", b.Get(FieldBudgetConsumed))
	assert.Equal(t, "o", b.Get(FieldOwnerID))
	assert.Empty(t, b.Get(Field("bogus")))

	updated := b.Set(FieldBudgetConsumed, "11")
	assert.Equal(t, "11", updated.BudgetConsumed)
	assert.Equal(t, "10", b.BudgetConsumed, "Set must not mutate the receiver")
	assert.Equal(t, b, b.Set(Field("bogus"), "x"))
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in      string
		want    Field
		wantErr bool
	}{
		{in: "name", want: FieldName},
		{in: "budgetConsumed", want: FieldBudgetConsumed},
		{in: "ownerId", want: FieldOwnerID},
		{in: "promx_budgetconsumed", want: FieldBudgetConsumed},
		{in: "ownerid", want: FieldOwnerID},
		{in: "promx_budgetid", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseField(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestField_Attribute(t *testing.T) {
	assert.Equal(t, "promx_name", FieldName.Attribute())
	assert.Equal(t, "promx_budgetconsumed", FieldBudgetConsumed.Attribute())
	assert.Equal(t, "ownerid", FieldOwnerID.Attribute())
	assert.True(t, FieldBudgetConsumed.Numeric())
	assert.False(t, FieldName.Numeric())
	assert.Equal(t, "b-1/name", Key("b-1", FieldName).String())
}

func TestAmountCanonicalForm(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "150", want: "150"},
		{in: "42.5", want: "42.5"},
		{in: "42.50", want: "42.5"},
		{in: " 7 ", want: "7"},
		{in: "0.100", want: "0.1"},
		{in: "-3.20", want: "-3.2"},
		{in: "1e3", want: "1000"},
		{in: "abc", wantErr: true},
		{in: "1,000", wantErr: true},
		{in: "", wantErr: true},
		{in: "1.00000000000000", want: "1"},
		{in: "0.0000000001", want: "0.0000000001"},
		{in: "0.00000000001", wantErr: true},
		{in: "1234567890123456789012345678", want: "1234567890123456789012345678"},
		{in: "12345678901234567890123456789", wantErr: true},
		{in: "0e-9000000", want: "0"},
		{in: "1e9000000", wantErr: true},
		{in: "1e90000000", wantErr: true},
		{in: "1e-9000000", wantErr: true},
		{in: "100e-12", want: "0.0000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(d))
		})
	}
}
