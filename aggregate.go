package multipartenc

import (
	"reflect"
	"slices"
)

// aggregator keeps the per field bookkeeping of one extraction: how often a
// field was seen, its decoded values in arrival order, and every failure in
// the order it was encountered.
type aggregator struct {
	schema *Schema
	seen   []int
	values [][]reflect.Value
	errs   []*FieldError
}

func newAggregator(s *Schema) *aggregator {
	return &aggregator{
		schema: s,
		seen:   make([]int, len(s.fields)),
		values: make([][]reflect.Value, len(s.fields)),
	}
}

// observe records a part for field i. It reports false when the part must
// be discarded because the field does not accept another value.
func (a *aggregator) observe(i int) bool {
	a.seen[i]++
	f := a.schema.fields[i]
	if f.card == CardinalityRepeated || a.seen[i] == 1 {
		return true
	}
	// Report a duplicate once, however often the field is repeated.
	if a.seen[i] == 2 {
		a.fail(&FieldError{Field: f.name, Kind: KindDuplicateField})
	}
	return false
}

func (a *aggregator) add(i int, v reflect.Value) {
	a.values[i] = append(a.values[i], v)
}

func (a *aggregator) fail(fe *FieldError) {
	a.errs = append(a.errs, fe)
}

// finish records missing required fields and returns the composite error of
// the extraction, if any.
func (a *aggregator) finish() error {
	for i, f := range a.schema.fields {
		if f.card == CardinalityRequired && a.seen[i] == 0 {
			a.fail(&FieldError{Field: f.name, Kind: KindMissingField})
		}
	}
	if len(a.errs) > 0 {
		return &MultipartError{Errors: a.errs}
	}
	return nil
}

// Values holds the decoded values of an extraction against a schema built
// with [NewSchema].
type Values struct {
	schema *Schema
	values [][]any
}

func (a *aggregator) result() *Values {
	values := make([][]any, len(a.values))
	for i, vs := range a.values {
		if len(vs) == 0 {
			continue
		}
		values[i] = make([]any, len(vs))
		for j, v := range vs {
			values[i][j] = v.Interface()
		}
	}
	return &Values{schema: a.schema, values: values}
}

// Schema returns the schema the values were decoded against.
func (v *Values) Schema() *Schema { return v.schema }

// Get returns the value of a required or optional field. It reports false
// when the field is absent or unknown.
func (v *Values) Get(name string) (any, bool) {
	i, ok := v.schema.byName[name]
	if !ok || len(v.values[i]) == 0 {
		return nil, false
	}
	return v.values[i][0], true
}

// All returns every value of the field in arrival order.
func (v *Values) All(name string) []any {
	i, ok := v.schema.byName[name]
	if !ok {
		return nil
	}
	return slices.Clone(v.values[i])
}

// Has reports whether the field received at least one value.
func (v *Values) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// ValueOf returns the value of a field as a T. It reports false when the
// field is absent or its values are not of type T.
func ValueOf[T any](v *Values, name string) (T, bool) {
	x, ok := v.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := x.(T)
	return t, ok
}

// ValuesOf returns every value of a repeated field as a []T, skipping values
// that are not of type T.
func ValuesOf[T any](v *Values, name string) []T {
	all := v.All(name)
	if len(all) == 0 {
		return nil
	}
	out := make([]T, 0, len(all))
	for _, x := range all {
		if t, ok := x.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
