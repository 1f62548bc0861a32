package model

import "fmt"

// Field identifies one of the editable budget attributes.
type Field string

// Editable fields.
const (
	FieldName           Field = "name"
	FieldBudgetConsumed Field = "budgetConsumed"
	FieldOwnerID        Field = "ownerId"
)

// EditableFields lists the editable fields in display order.
var EditableFields = []Field{FieldName, FieldBudgetConsumed, FieldOwnerID}

// ParseField resolves a field from its name. Store attribute names are
// accepted as aliases.
func ParseField(s string) (Field, error) {
	for _, f := range EditableFields {
		if s == string(f) || s == f.Attribute() {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Attribute returns the store-side attribute name of the field.
func (f Field) Attribute() string {
	switch f {
	case FieldName:
		return AttrName
	case FieldBudgetConsumed:
		return AttrBudgetConsumed
	case FieldOwnerID:
		return AttrOwnerID
	default:
		return ""
	}
}

// Label returns the column heading for the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldBudgetConsumed:
		return "Budget Consumed"
	case FieldOwnerID:
		return "Owner"
	default:
		return string(f)
	}
}

// Numeric reports whether the field holds a decimal value.
func (f Field) Numeric() bool {
	return f == FieldBudgetConsumed
}

// FieldKey scopes draft, saving and error state to a single cell.
type FieldKey struct {
	RowID string
	Field Field
}

// Key builds a FieldKey.
func Key(rowID string, f Field) FieldKey {
	return FieldKey{RowID: rowID, Field: f}
}

func (k FieldKey) String() string {
	return k.RowID + "/" + string(k.Field)
}
