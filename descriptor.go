package multipartenc

import (
	"fmt"
	"reflect"
)

//go:generate stringer -type=Cardinality -trimprefix=Cardinality

// Cardinality is the number of parts a field accepts.
type Cardinality int

const (
	// CardinalityRequired fields must appear exactly once.
	CardinalityRequired Cardinality = iota

	// CardinalityOptional fields may appear at most once.
	CardinalityOptional

	// CardinalityRepeated fields may appear any number of times. Values are
	// kept in arrival order.
	CardinalityRepeated
)

// FieldDescriptor is the static description of one field of a target: its
// part name, cardinality and decoder. A FieldDescriptor is immutable.
type FieldDescriptor struct {
	name    string
	card    Cardinality
	dec     PartDecoder
	maxSize int64

	// index is the struct field index of the field for schemas built from
	// a struct type.
	index []int
}

// FieldOption customises a [FieldDescriptor].
type FieldOption func(*FieldDescriptor)

// MaxSize limits the body of parts for the field to n bytes, overriding the
// per-part limit of the decoder configuration.
func MaxSize(n int64) FieldOption {
	return func(f *FieldDescriptor) { f.maxSize = n }
}

// Required describes a field that must be given exactly once.
func Required(name string, dec PartDecoder, opts ...FieldOption) FieldDescriptor {
	return newField(name, CardinalityRequired, dec, opts)
}

// Optional describes a field that may be given at most once.
func Optional(name string, dec PartDecoder, opts ...FieldOption) FieldDescriptor {
	return newField(name, CardinalityOptional, dec, opts)
}

// Repeated describes a field that may be given any number of times.
func Repeated(name string, dec PartDecoder, opts ...FieldOption) FieldDescriptor {
	return newField(name, CardinalityRepeated, dec, opts)
}

func newField(name string, card Cardinality, dec PartDecoder, opts []FieldOption) FieldDescriptor {
	f := FieldDescriptor{name: name, card: card, dec: dec}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func (f FieldDescriptor) Name() string             { return f.name }
func (f FieldDescriptor) Cardinality() Cardinality { return f.card }
func (f FieldDescriptor) Decoder() PartDecoder     { return f.dec }

// MaxSize returns the size limit of the field, or 0 when the per-part limit
// of the decoder configuration applies.
func (f FieldDescriptor) MaxSize() int64 { return f.maxSize }

// Decode converts p into a value of the field's type. A body larger than the
// size limit of the field fails with [KindPayloadTooLarge]. Failures are
// returned as a *[FieldError].
func (f FieldDescriptor) Decode(p *RawPart) (any, error) {
	if err := f.dec.validate(f.name); err != nil {
		return nil, err
	}
	if f.maxSize > 0 && int64(len(p.Body)) > f.maxSize {
		return nil, &FieldError{Field: f.name, Kind: KindPayloadTooLarge, Limit: f.maxSize}
	}
	v, fe := f.dec.decode(p)
	if fe != nil {
		fe.Field = f.name
		return nil, fe
	}
	return v.Interface(), nil
}

// Schema is the ordered descriptor table of a target. Schemas are read-only
// once built and safe for concurrent use.
type Schema struct {
	typ    reflect.Type
	fields []FieldDescriptor
	byName map[string]int
}

// NewSchema builds a schema from the given fields. It fails when a name is
// empty or used twice, when a cardinality is unknown, and with an
// *[UnsupportedDecoderError] when a decoder cannot be used.
func NewSchema(fields ...FieldDescriptor) (*Schema, error) {
	return newSchema(nil, fields)
}

func newSchema(typ reflect.Type, fields []FieldDescriptor) (*Schema, error) {
	s := &Schema{
		typ:    typ,
		fields: make([]FieldDescriptor, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i, f := range s.fields {
		if f.name == "" {
			return nil, fmt.Errorf("multipart: field %d has no name", i)
		}
		if _, dup := s.byName[f.name]; dup {
			return nil, fmt.Errorf("multipart: field name %q used more than once", f.name)
		}
		switch f.card {
		case CardinalityRequired, CardinalityOptional, CardinalityRepeated:
		default:
			return nil, fmt.Errorf("multipart: field %q: invalid cardinality %v", f.name, f.card)
		}
		if f.maxSize < 0 {
			return nil, fmt.Errorf("multipart: field %q: negative size limit", f.name)
		}
		if err := f.dec.validate(f.name); err != nil {
			return nil, err
		}
		s.byName[f.name] = i
	}
	return s, nil
}

// MustSchema is like [NewSchema] but panics on error. It simplifies the
// initialisation of package level schemas.
func MustSchema(fields ...FieldDescriptor) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the descriptors of the schema in declaration order.
func (s *Schema) Fields() []FieldDescriptor {
	fields := make([]FieldDescriptor, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Lookup returns the descriptor for the part name, which is matched exactly.
func (s *Schema) Lookup(name string) (FieldDescriptor, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// Type returns the struct type the schema was derived from, or nil for a
// schema built with [NewSchema].
func (s *Schema) Type() reflect.Type { return s.typ }
