// Package table normalizes raw FPL payloads into flat tabular records.
//
// A Table is an ordered sequence of records sharing one schema. Cell values
// are scalars: string, float64, bool, or nil for a missing upstream value.
// Missing optional fields are stored as nil rather than omitted so every
// record in a table exposes the same field set.
package table

// Type is the declared value type of a schema field.
type Type int

const (
	String Type = iota
	Number
	Bool
)

func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

// Field is one schema column.
type Field struct {
	Name string
	Type Type
}

// Record maps field names to scalar values.
type Record map[string]any

// Table is an ordered set of records with a shared schema. Aliases are
// filter-only virtual fields that match any of their underlying fields
// (a fixture's "team" matches home or away).
type Table struct {
	Kind    string
	Fields  []Field
	Aliases map[string][]string
	Records []Record
}

// Field resolves a concrete schema field by name.
func (t *Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Alias resolves a virtual field to its underlying concrete fields.
func (t *Table) Alias(name string) ([]string, bool) {
	fields, ok := t.Aliases[name]
	return fields, ok
}

// FieldNames returns the schema column names in order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

func num(v int) any { return float64(v) }

func numPtr(v *int) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

func strPtr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
