package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Store attribute names for the budget entity.
const (
	AttrID             = "promx_budgetid"
	AttrName           = "promx_name"
	AttrBudgetConsumed = "promx_budgetconsumed"
	AttrOwnerID        = "ownerid"
)

// BudgetAttributes is the projection requested on every list call.
var BudgetAttributes = []string{AttrID, AttrName, AttrBudgetConsumed, AttrOwnerID}

// Budget is a single row of the budget entity. BudgetConsumed is held as
// display text; it is converted to a number only when written.
type Budget struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BudgetConsumed string `json:"budgetConsumed"`
	OwnerID        string `json:"ownerId"`
}

// Get returns the value of an editable field.
func (b Budget) Get(f Field) string {
	switch f {
	case FieldName:
		return b.Name
	case FieldBudgetConsumed:
		return b.BudgetConsumed
	case FieldOwnerID:
		return b.OwnerID
	default:
		return ""
	}
}

// Set returns a copy of b with the field replaced.
func (b Budget) Set(f Field, value string) Budget {
	switch f {
	case FieldName:
		b.Name = value
	case FieldBudgetConsumed:
		b.BudgetConsumed = value
	case FieldOwnerID:
		b.OwnerID = value
	}
	return b
}

// BudgetFromRecord converts a store record into a Budget. Missing or null
// attributes become empty strings and numeric values are rendered in
// canonical decimal form.
func BudgetFromRecord(rec map[string]any) Budget {
	return Budget{
		ID:             ValueText(rec[AttrID]),
		Name:           ValueText(rec[AttrName]),
		BudgetConsumed: ValueText(rec[AttrBudgetConsumed]),
		OwnerID:        ValueText(rec[AttrOwnerID]),
	}
}

// ValueText renders a store attribute value as display text. Numbers use
// the canonical amount format.
func ValueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case json.Number:
		// Numbers outside the amount range keep the store's text.
		if d, err := ParseAmount(val.String()); err == nil {
			return FormatAmount(d)
		}
		return val.String()
	case decimal.Decimal:
		return FormatAmount(val)
	case float64:
		return FormatAmount(decimal.NewFromFloat(val))
	case float32:
		return FormatAmount(decimal.NewFromFloat32(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
