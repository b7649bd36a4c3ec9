package multipartenc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// cache of schemas to avoid repeated parsing of the same struct type across
// multiple calls to SchemaFor. The key is the [reflect.Type] of the struct,
// and the value is a *schemaResult.
//
// This cache is safe for concurrent use.
var schemaCache sync.Map

type schemaResult struct {
	schema *Schema
	err    error
}

type tag struct {
	Name    string
	Ignore  bool
	Format  string
	MaxSize int64
}

// SchemaOf returns the schema of the struct type T. See [SchemaFor].
func SchemaOf[T any]() (*Schema, error) {
	return SchemaFor(reflect.TypeFor[T]())
}

// SchemaFor derives the schema of a struct type from its fields and their
// `multipart` tags:
//
//	type Upload struct {
//		Name     string    `multipart:"name"`            // required text
//		Tags     []string  `multipart:"tags"`            // repeated text
//		Age      *int      `multipart:"age"`             // optional, converted
//		Avatar   *File     `multipart:"avatar,max=1048576"`
//		Settings *Settings `multipart:"settings,json"`   // structured payload
//		Internal string    `multipart:"-"`
//	}
//
// Pointer fields are optional, slice fields other than []byte are repeated
// and all other fields are required. The part name defaults to the field
// name. Unexported fields and fields named "-" are ignored, with or without
// options.
//
// Schemas are cached per type, including failures.
func SchemaFor(t reflect.Type) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("multipart: schema target must be a struct, got %v", t)
	}

	// Check the cache first.
	if cached, ok := schemaCache.Load(t); ok {
		r := cached.(*schemaResult)
		return r.schema, r.err
	}

	schema, err := buildSchema(t)
	cached, _ := schemaCache.LoadOrStore(t, &schemaResult{schema: schema, err: err})
	r := cached.(*schemaResult)
	return r.schema, r.err
}

func buildSchema(t reflect.Type) (*Schema, error) {
	fields := make([]FieldDescriptor, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag, err := parseTag(f.Tag.Get("multipart"))
		if err != nil {
			return nil, fmt.Errorf("multipart: field %s: %w", f.Name, err)
		}
		if tag.Ignore {
			continue
		}
		if tag.Name == "" {
			tag.Name = f.Name
		}

		fd, err := fieldFor(f, tag)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fd)
	}
	return newSchema(t, fields)
}

// fieldFor derives the descriptor of a struct field. Cardinality comes from
// the shape of the Go type, the decoder from the element type and the tag.
func fieldFor(f reflect.StructField, tag *tag) (FieldDescriptor, error) {
	t := f.Type
	card := CardinalityRequired
	switch {
	case t.Kind() == reflect.Pointer:
		card = CardinalityOptional
		t = t.Elem()
	case t.Kind() == reflect.Slice && !isBytes(t):
		card = CardinalityRepeated
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}

	var dec PartDecoder
	switch {
	case tag.Format != "":
		dec = StructuredOf(tag.Format, t)
	case hasTextHook(t):
		dec = TextOf(t)
	case isBytes(t):
		dec = BinaryOf(t)
	case t == fileType:
		dec = BinaryFile()
	default:
		dec = TextOf(t)
	}
	if err := dec.validate(tag.Name); err != nil {
		if ue, ok := err.(*UnsupportedDecoderError); ok {
			ue.Type = f.Type
		}
		return FieldDescriptor{}, err
	}

	fd := newField(tag.Name, card, dec, nil)
	fd.maxSize = tag.MaxSize
	fd.index = f.Index
	return fd, nil
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func hasTextHook(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerType) || pt.Implements(textUnmarshalerType)
}

func parseTag(str string) (*tag, error) {
	str = strings.TrimSpace(str)
	if str == "-" {
		return &tag{Ignore: true}, nil
	}

	// The first part of the tag is the name of the field, the remaining parts
	// are options that modify how the field is decoded.
	parts := strings.Split(str, ",")
	t := &tag{}

	// A hyphen as the name ignores the field, whatever options follow.
	switch name := strings.TrimSpace(parts[0]); name {
	case "-":
		t.Ignore = true
	default:
		t.Name = name
	}

	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		key, value, _ := strings.Cut(p, "=")
		switch key {
		case "":
		case "ignore":
			t.Ignore = true
		case "json", "yaml":
			t.Format = key
		case "format":
			if value == "" {
				return nil, fmt.Errorf("empty format in tag %q", str)
			}
			t.Format = value
		case "max":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid size limit %q in tag %q", value, str)
			}
			t.MaxSize = n
		default:
			return nil, fmt.Errorf("unknown option %q in tag %q", key, str)
		}
	}

	return t, nil
}
