package multipartenc_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomasbasham/multipartenc"
)

var profileSchema = multipartenc.MustSchema(
	multipartenc.Required("name", multipartenc.Text[string]()),
	multipartenc.Repeated("tags", multipartenc.Text[string]()),
	multipartenc.Optional("avatar", multipartenc.Binary()),
)

func TestNewSchema(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fields  []multipartenc.FieldDescriptor
		wantErr error
	}{
		"valid": {
			fields: []multipartenc.FieldDescriptor{
				multipartenc.Required("id", multipartenc.Text[uint32]()),
				multipartenc.Optional("meta", multipartenc.Structured[map[string]any]("json")),
				multipartenc.Repeated("files", multipartenc.BinaryFile(), multipartenc.MaxSize(1024)),
			},
		},
		"empty": {},
		"unsupported text type": {
			fields: []multipartenc.FieldDescriptor{
				multipartenc.Required("ch", multipartenc.Text[chan int]()),
			},
			wantErr: multipartenc.ErrUnsupportedDecoder,
		},
		"unregistered format": {
			fields: []multipartenc.FieldDescriptor{
				multipartenc.Required("doc", multipartenc.Structured[map[string]any]("msgpack")),
			},
			wantErr: multipartenc.ErrUnsupportedDecoder,
		},
		"binary of non byte slice": {
			fields: []multipartenc.FieldDescriptor{
				multipartenc.Required("doc", multipartenc.BinaryOf(reflect.TypeFor[[]int]())),
			},
			wantErr: multipartenc.ErrUnsupportedDecoder,
		},
		"zero decoder": {
			fields: []multipartenc.FieldDescriptor{
				multipartenc.Required("doc", multipartenc.PartDecoder{}),
			},
			wantErr: multipartenc.ErrUnsupportedDecoder,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, err := multipartenc.NewSchema(tt.fields...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(s.Fields()); got != len(tt.fields) {
				t.Errorf("expected %d fields, got: %d", len(tt.fields), got)
			}
		})
	}
}

func TestNewSchema_InvalidFields(t *testing.T) {
	t.Parallel()

	tests := map[string][]multipartenc.FieldDescriptor{
		"empty name": {
			multipartenc.Required("", multipartenc.Text[string]()),
		},
		"duplicate name": {
			multipartenc.Required("a", multipartenc.Text[string]()),
			multipartenc.Optional("a", multipartenc.Text[int]()),
		},
		"negative size limit": {
			multipartenc.Required("a", multipartenc.Binary(), multipartenc.MaxSize(-1)),
		},
	}
	for name, fields := range tests {
		fields := fields
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := multipartenc.NewSchema(fields...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestUnsupportedDecoderError(t *testing.T) {
	t.Parallel()

	_, err := multipartenc.NewSchema(
		multipartenc.Required("doc", multipartenc.Structured[map[string]any]("msgpack")),
	)

	var ue *multipartenc.UnsupportedDecoderError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnsupportedDecoderError, got: %v", err)
	}
	if ue.Field != "doc" || ue.Format != "msgpack" {
		t.Errorf("unexpected error: %+v", ue)
	}
	want := `multipart: field "doc": format "msgpack" is not registered`
	if got := err.Error(); got != want {
		t.Errorf("expected %q, got: %q", want, got)
	}
}

func TestMustSchema_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	multipartenc.MustSchema(multipartenc.Required("", multipartenc.Text[string]()))
}

func TestSchema_Lookup(t *testing.T) {
	t.Parallel()

	f, ok := profileSchema.Lookup("tags")
	if !ok {
		t.Fatal("expected tags to be found")
	}
	if f.Cardinality() != multipartenc.CardinalityRepeated {
		t.Errorf("expected Repeated, got: %v", f.Cardinality())
	}
	if f.Decoder().Kind() != multipartenc.DecoderText {
		t.Errorf("expected Text, got: %v", f.Decoder().Kind())
	}
	if _, ok := profileSchema.Lookup("Tags"); ok {
		t.Error("expected lookup to be case sensitive")
	}
	if profileSchema.Type() != nil {
		t.Errorf("expected no struct type, got: %v", profileSchema.Type())
	}

	var names []string
	for _, f := range profileSchema.Fields() {
		names = append(names, f.Name())
	}
	if diff := cmp.Diff([]string{"name", "tags", "avatar"}, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFieldDescriptor_Decode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		field    multipartenc.FieldDescriptor
		part     multipartenc.RawPart
		want     any
		wantKind multipartenc.Kind
		wantErr  bool
	}{
		"text": {
			field: multipartenc.Required("title", multipartenc.Text[string]()),
			part:  multipartenc.RawPart{Body: []byte("hello")},
			want:  "hello",
		},
		"text to int8": {
			field: multipartenc.Required("n", multipartenc.Text[int8]()),
			part:  multipartenc.RawPart{Body: []byte("-128")},
			want:  int8(-128),
		},
		"text to int8 overflow": {
			field:    multipartenc.Required("n", multipartenc.Text[int8]()),
			part:     multipartenc.RawPart{Body: []byte("128")},
			wantKind: multipartenc.KindConversionError,
			wantErr:  true,
		},
		"text to uint rejects sign": {
			field:    multipartenc.Required("n", multipartenc.Text[uint]()),
			part:     multipartenc.RawPart{Body: []byte("-1")},
			wantKind: multipartenc.KindConversionError,
			wantErr:  true,
		},
		"text to float32": {
			field: multipartenc.Required("f", multipartenc.Text[float32]()),
			part:  multipartenc.RawPart{Body: []byte("0.5")},
			want:  float32(0.5),
		},
		"text to bool": {
			field: multipartenc.Required("b", multipartenc.Text[bool]()),
			part:  multipartenc.RawPart{Body: []byte("NO")},
			want:  false,
		},
		"text with surrounding whitespace": {
			field:    multipartenc.Required("n", multipartenc.Text[int]()),
			part:     multipartenc.RawPart{Body: []byte(" 1 ")},
			wantKind: multipartenc.KindConversionError,
			wantErr:  true,
		},
		"invalid utf-8": {
			field:    multipartenc.Required("title", multipartenc.Text[string]()),
			part:     multipartenc.RawPart{Body: []byte{0xc3, 0x28}},
			wantKind: multipartenc.KindInvalidEncoding,
			wantErr:  true,
		},
		"binary": {
			field: multipartenc.Required("blob", multipartenc.Binary()),
			part:  multipartenc.RawPart{Body: []byte{0xc3, 0x28}},
			want:  []byte{0xc3, 0x28},
		},
		"binary within field limit": {
			field: multipartenc.Optional("avatar", multipartenc.Binary(), multipartenc.MaxSize(4)),
			part:  multipartenc.RawPart{Body: []byte("0123")},
			want:  []byte("0123"),
		},
		"binary over field limit": {
			field:    multipartenc.Optional("avatar", multipartenc.Binary(), multipartenc.MaxSize(4)),
			part:     multipartenc.RawPart{Body: []byte("0123456789")},
			wantKind: multipartenc.KindPayloadTooLarge,
			wantErr:  true,
		},
		"file": {
			field: multipartenc.Required("doc", multipartenc.BinaryFile()),
			part:  multipartenc.RawPart{Filename: "a.txt", Body: []byte("abc")},
			want:  multipartenc.File{Filename: "a.txt", Size: 3, Content: []byte("abc")},
		},
		"structured": {
			field: multipartenc.Required("meta", multipartenc.Structured[map[string]int]("json")),
			part:  multipartenc.RawPart{Body: []byte(`{"a":1}`)},
			want:  map[string]int{"a": 1},
		},
		"structured malformed": {
			field:    multipartenc.Required("meta", multipartenc.Structured[map[string]int]("json")),
			part:     multipartenc.RawPart{Body: []byte(`{"a":"one"}`)},
			wantKind: multipartenc.KindDeserializationError,
			wantErr:  true,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.field.Decode(&tt.part)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got: %v", tt.wantErr, err)
			}
			if tt.wantErr {
				var fe *multipartenc.FieldError
				if !errors.As(err, &fe) {
					t.Fatalf("expected *FieldError, got: %v", err)
				}
				if fe.Kind != tt.wantKind || fe.Field != tt.field.Name() {
					t.Errorf("unexpected field error: %+v", fe)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeValues(t *testing.T) {
	t.Parallel()

	body, boundary := encode(t, field("name", "Ann"), field("tags", "x"), field("tags", "y"))
	values, err := multipartenc.NewDecoder(body, boundary).DecodeValues(context.Background(), profileSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, ok := multipartenc.ValueOf[string](values, "name")
	if !ok || name != "Ann" {
		t.Errorf("expected name Ann, got: %q (%v)", name, ok)
	}
	if diff := cmp.Diff([]string{"x", "y"}, multipartenc.ValuesOf[string](values, "tags")); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	values.All("tags")[0] = "mutated"
	if diff := cmp.Diff([]string{"x", "y"}, multipartenc.ValuesOf[string](values, "tags")); diff != "" {
		t.Errorf("expected stored values to be unaffected (-want +got):\n%s", diff)
	}
	if values.Has("avatar") {
		t.Error("expected avatar to be absent")
	}
	if _, ok := values.Get("avatar"); ok {
		t.Error("expected Get to report the absent marker")
	}
	if got := values.All("unknown"); got != nil {
		t.Errorf("expected no values for an unknown field, got: %v", got)
	}
	if _, ok := multipartenc.ValueOf[int](values, "name"); ok {
		t.Error("expected a type mismatch to report false")
	}
	if values.Schema() != profileSchema {
		t.Error("expected values to reference their schema")
	}
}

func TestDecodeValues_MissingName(t *testing.T) {
	t.Parallel()

	body, boundary := encode(t, field("tags", "x"))
	values, err := multipartenc.NewDecoder(body, boundary).DecodeValues(context.Background(), profileSchema)
	if values != nil {
		t.Errorf("expected no values, got: %v", values)
	}

	var me *multipartenc.MultipartError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MultipartError, got: %v", err)
	}
	if diff := cmp.Diff([]string{"name"}, me.Fields(multipartenc.KindMissingField)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
