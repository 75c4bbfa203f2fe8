// Package query applies filter/sort/limit specifications to a normalized
// table. It is a pure function of its inputs: no caching, no I/O.
package query

import (
	"fmt"
	"sort"
	"strings"

	"fpl-query-mcp/internal/table"
)

// Op is a filter operator.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpContains Op = "contains"
	OpIn       Op = "in"
)

// Filter is one (field, operator, operand) condition.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Sort orders the passing records by one field, ascending unless Descending.
type Sort struct {
	Field      string
	Descending bool
}

// Spec is a full query: conjunctive filters, optional sort, optional limit.
// A nil Limit means unbounded; a present limit must be positive.
type Spec struct {
	Filters []Filter
	Sort    *Sort
	Limit   *int
}

// SpecError reports a malformed query: unknown field or operator, an
// operator applied to an incompatible field type, or an invalid limit.
// The whole query fails; no partial results are returned.
type SpecError struct {
	msg string
}

func (e *SpecError) Error() string { return e.msg }

func specErrf(format string, args ...any) *SpecError {
	return &SpecError{msg: fmt.Sprintf(format, args...)}
}

// SpecErrorf builds a SpecError outside the engine; the tool layer uses it
// for request-shape problems like an unknown entity kind.
func SpecErrorf(format string, args ...any) *SpecError {
	return specErrf(format, args...)
}

// AsSpecError extracts a *SpecError from an error chain.
func AsSpecError(err error) (*SpecError, bool) {
	se, ok := err.(*SpecError)
	return se, ok
}

// compiledFilter evaluates one filter against a record. An alias filter
// passes when any of its underlying fields matches.
type compiledFilter struct {
	fields []string
	match  func(cell any) bool
}

// Run evaluates spec against t. Validation of every filter, the sort field
// and the limit happens before any record is scanned, so a malformed spec
// never yields partial results.
func Run(t *table.Table, spec Spec) ([]table.Record, error) {
	if spec.Limit != nil && *spec.Limit <= 0 {
		return nil, specErrf("limit must be a positive integer, got %d", *spec.Limit)
	}

	compiled := make([]compiledFilter, 0, len(spec.Filters))
	for _, f := range spec.Filters {
		cf, err := compile(t, f)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cf)
	}

	var sortField table.Field
	if spec.Sort != nil {
		if _, isAlias := t.Alias(spec.Sort.Field); isAlias {
			return nil, specErrf("cannot sort %s by %q: it matches multiple columns", t.Kind, spec.Sort.Field)
		}
		field, ok := t.Field(spec.Sort.Field)
		if !ok {
			return nil, unknownFieldErr(t, "sort field", spec.Sort.Field)
		}
		sortField = field
	}

	out := make([]table.Record, 0, len(t.Records))
	for _, rec := range t.Records {
		if matchesAll(rec, compiled) {
			out = append(out, rec)
		}
	}

	if spec.Sort != nil {
		sortRecords(out, sortField, spec.Sort.Descending)
	}

	if spec.Limit != nil && len(out) > *spec.Limit {
		out = out[:*spec.Limit]
	}
	return out, nil
}

func matchesAll(rec table.Record, filters []compiledFilter) bool {
	for _, cf := range filters {
		hit := false
		for _, field := range cf.fields {
			if cf.match(rec[field]) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func compile(t *table.Table, f Filter) (compiledFilter, error) {
	fields := []string{f.Field}
	var fieldType table.Type
	if under, isAlias := t.Alias(f.Field); isAlias {
		fields = under
		// alias members share one type by construction; use the first
		ft, _ := t.Field(under[0])
		fieldType = ft.Type
	} else {
		ft, ok := t.Field(f.Field)
		if !ok {
			return compiledFilter{}, unknownFieldErr(t, "filter field", f.Field)
		}
		fieldType = ft.Type
	}

	match, err := compileMatch(t.Kind, f, fieldType)
	if err != nil {
		return compiledFilter{}, err
	}
	return compiledFilter{fields: fields, match: match}, nil
}

func compileMatch(kind string, f Filter, fieldType table.Type) (func(any) bool, error) {
	switch f.Op {
	case OpEq, OpNe:
		want, err := coerce(f, fieldType)
		if err != nil {
			return nil, err
		}
		if f.Op == OpEq {
			return func(cell any) bool { return cell != nil && cell == want }, nil
		}
		return func(cell any) bool { return cell == nil || cell != want }, nil

	case OpLt, OpLte, OpGt, OpGte:
		if fieldType == table.Bool {
			return nil, specErrf("operator %q cannot apply to boolean field %q", f.Op, f.Field)
		}
		want, err := coerce(f, fieldType)
		if err != nil {
			return nil, err
		}
		op := f.Op
		return func(cell any) bool {
			if cell == nil {
				return false
			}
			c := compareScalar(cell, want, fieldType)
			switch op {
			case OpLt:
				return c < 0
			case OpLte:
				return c <= 0
			case OpGt:
				return c > 0
			default:
				return c >= 0
			}
		}, nil

	case OpContains:
		if fieldType != table.String {
			return nil, specErrf("operator %q requires a string field, %q is %s", f.Op, f.Field, fieldType)
		}
		needle, ok := f.Value.(string)
		if !ok {
			return nil, specErrf("operator %q on %q needs a string value, got %T", f.Op, f.Field, f.Value)
		}
		lowered := strings.ToLower(needle)
		return func(cell any) bool {
			s, ok := cell.(string)
			return ok && strings.Contains(strings.ToLower(s), lowered)
		}, nil

	case OpIn:
		members, ok := asSlice(f.Value)
		if !ok {
			return nil, specErrf("operator %q on %q needs a list value, got %T", f.Op, f.Field, f.Value)
		}
		wanted := make([]any, 0, len(members))
		for _, m := range members {
			w, err := coerce(Filter{Field: f.Field, Op: f.Op, Value: m}, fieldType)
			if err != nil {
				return nil, err
			}
			wanted = append(wanted, w)
		}
		return func(cell any) bool {
			if cell == nil {
				return false
			}
			for _, w := range wanted {
				if cell == w {
					return true
				}
			}
			return false
		}, nil

	default:
		return nil, specErrf("unknown operator %q in filter on %q", f.Op, f.Field)
	}
}

// coerce converts the user-supplied operand to the field's declared type.
// JSON transports deliver all numbers as float64; native int operands from
// in-process callers are accepted too.
func coerce(f Filter, fieldType table.Type) (any, error) {
	switch fieldType {
	case table.Number:
		if n, ok := asNumber(f.Value); ok {
			return n, nil
		}
		return nil, specErrf("filter %q %s: field is numeric, got %T value", f.Field, f.Op, f.Value)
	case table.Bool:
		if b, ok := f.Value.(bool); ok {
			return b, nil
		}
		return nil, specErrf("filter %q %s: field is boolean, got %T value", f.Field, f.Op, f.Value)
	default:
		if s, ok := f.Value.(string); ok {
			return s, nil
		}
		return nil, specErrf("filter %q %s: field is string, got %T value", f.Field, f.Op, f.Value)
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// compareScalar orders two non-nil cells of the same declared type.
func compareScalar(a, b any, fieldType table.Type) int {
	switch fieldType {
	case table.Number:
		af, _ := asNumber(a)
		bf, _ := asNumber(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case table.Bool:
		ab, _ := a.(bool)
		bb, _ := b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	default:
		as, _ := a.(string)
		bs, _ := b.(string)
		return strings.Compare(as, bs)
	}
}

// sortRecords stably sorts by field, nulls last regardless of direction.
func sortRecords(records []table.Record, field table.Field, descending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i][field.Name], records[j][field.Name]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		c := compareScalar(a, b, field.Type)
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func unknownFieldErr(t *table.Table, what, name string) *SpecError {
	return specErrf("unknown %s %q for %s; available fields: %s",
		what, name, t.Kind, strings.Join(t.FieldNames(), ", "))
}
