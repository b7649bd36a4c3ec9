package multipartenc

import (
	"mime"
	"net/textproto"
	"path/filepath"
	"reflect"
	"unicode/utf8"
)

// RawPart is one part of a multipart stream as observed on the wire. It is
// handed to a [PartDecoder] once its body has been read in full.
type RawPart struct {
	FieldName   string
	Filename    string
	ContentType string
	Header      textproto.MIMEHeader
	Body        []byte
}

// File is a binary part together with the metadata sent along with it.
type File struct {
	// Filename is the original filename provided by the client.
	Filename string

	// Size is the size of the content in bytes.
	Size int64

	// Header contains the MIME header fields of the part.
	Header textproto.MIMEHeader

	Content []byte
}

// ContentType returns the media type of the file. It first checks the
// Content-Type header of the part, then falls back to detecting the type
// from the file extension.
func (f *File) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(filepath.Ext(f.Filename))
}

//go:generate stringer -type=DecoderKind -trimprefix=Decoder

// DecoderKind determines how the body of a part is interpreted.
type DecoderKind int

const (
	// DecoderText interprets the body as UTF-8 text, optionally converted to
	// a scalar.
	DecoderText DecoderKind = iota

	// DecoderBinary passes the body through unchanged.
	DecoderBinary

	// DecoderStructured deserializes the body with a registered [Format].
	DecoderStructured
)

var (
	bytesType = reflect.TypeFor[[]byte]()
	fileType  = reflect.TypeFor[File]()
)

// PartDecoder converts the body of a [RawPart] into a value of a fixed Go
// type. The zero PartDecoder is invalid; use [Text], [Binary], [BinaryFile]
// or [Structured] and their reflect based variants.
type PartDecoder struct {
	kind   DecoderKind
	typ    reflect.Type
	format string
	conv   textConverter
	codec  Format

	// err is a deferred construction failure. It is reported when the
	// decoder is used to build a Schema.
	err *UnsupportedDecoderError
}

// Text returns a decoder that reads the body as UTF-8 and converts it to T.
func Text[T any]() PartDecoder {
	return TextOf(reflect.TypeFor[T]())
}

// TextOf is like [Text] for a type only known at run time.
func TextOf(t reflect.Type) PartDecoder {
	conv, ok := converterFor(t)
	if !ok {
		return PartDecoder{kind: DecoderText, typ: t, err: &UnsupportedDecoderError{Type: t}}
	}
	return PartDecoder{kind: DecoderText, typ: t, conv: conv}
}

// Binary returns a decoder that yields the body as a []byte.
func Binary() PartDecoder {
	return BinaryOf(bytesType)
}

// BinaryOf returns a binary decoder yielding values of t, which must have
// an underlying type of []byte.
func BinaryOf(t reflect.Type) PartDecoder {
	if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Uint8 {
		return PartDecoder{kind: DecoderBinary, typ: t, err: &UnsupportedDecoderError{Type: t}}
	}
	return PartDecoder{kind: DecoderBinary, typ: t}
}

// BinaryFile returns a binary decoder that yields a [File], keeping the
// filename and headers of the part.
func BinaryFile() PartDecoder {
	return PartDecoder{kind: DecoderBinary, typ: fileType}
}

// Structured returns a decoder that deserializes the body into a T using
// the format registered under name.
func Structured[T any](format string) PartDecoder {
	return StructuredOf(format, reflect.TypeFor[T]())
}

// StructuredOf is like [Structured] for a type only known at run time.
func StructuredOf(format string, t reflect.Type) PartDecoder {
	codec, ok := lookupFormat(format)
	if !ok {
		return PartDecoder{kind: DecoderStructured, typ: t, format: format, err: &UnsupportedDecoderError{Type: t, Format: format}}
	}
	return PartDecoder{kind: DecoderStructured, typ: t, format: format, codec: codec}
}

// Kind returns the decode strategy.
func (d PartDecoder) Kind() DecoderKind { return d.kind }

// Type returns the Go type of the decoded values.
func (d PartDecoder) Type() reflect.Type { return d.typ }

// Format returns the name of the format of a structured decoder.
func (d PartDecoder) Format() string { return d.format }

// validate reports whether the decoder can be used for the named field.
func (d PartDecoder) validate(field string) error {
	if d.err != nil {
		err := *d.err
		err.Field = field
		return &err
	}
	if d.typ == nil || (d.kind == DecoderText && d.conv == nil) || (d.kind == DecoderStructured && d.codec == nil) {
		return &UnsupportedDecoderError{Field: field, Type: d.typ, Format: d.format}
	}
	return nil
}

// decode converts the body of p. The returned FieldError has no field name
// set. The body of p is not retained except by binary values, which take
// ownership of it.
func (d PartDecoder) decode(p *RawPart) (reflect.Value, *FieldError) {
	switch d.kind {
	case DecoderText:
		if !utf8.Valid(p.Body) {
			return reflect.Value{}, &FieldError{Kind: KindInvalidEncoding}
		}
		s := string(p.Body)
		v, err := d.conv(s)
		if err != nil {
			return reflect.Value{}, &FieldError{
				Kind:     KindConversionError,
				Expected: d.typ.String(),
				Raw:      truncate(s),
				Err:      err,
			}
		}
		return v, nil

	case DecoderBinary:
		if d.typ == fileType {
			return reflect.ValueOf(File{
				Filename: p.Filename,
				Size:     int64(len(p.Body)),
				Header:   p.Header,
				Content:  p.Body,
			}), nil
		}
		return reflect.ValueOf(p.Body).Convert(d.typ), nil

	case DecoderStructured:
		v := reflect.New(d.typ)
		if err := d.codec.Unmarshal(p.Body, v.Interface()); err != nil {
			return reflect.Value{}, &FieldError{
				Kind:     KindDeserializationError,
				Expected: d.format,
				Err:      err,
			}
		}
		return v.Elem(), nil
	}
	return reflect.Value{}, &FieldError{Kind: KindUnsupportedDecoder}
}
