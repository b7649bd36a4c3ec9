package multipartenc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

//go:generate stringer -type=Kind -trimprefix=Kind

// Kind classifies a decoding failure.
type Kind int

const (
	KindMalformedStream Kind = iota
	KindUnknownField
	KindDuplicateField
	KindMissingField
	KindInvalidEncoding
	KindConversionError
	KindPayloadTooLarge
	KindDeserializationError
	KindUnsupportedDecoder
)

// Sentinel errors, one per [Kind]. Every error produced by this package
// matches the sentinel of its kind with [errors.Is], so callers can test a
// [MultipartError] for the presence of a particular failure.
var (
	ErrMalformedStream      = errors.New("multipart: malformed stream")
	ErrUnknownField         = errors.New("multipart: unknown field")
	ErrDuplicateField       = errors.New("multipart: duplicate field")
	ErrMissingField         = errors.New("multipart: missing field")
	ErrInvalidEncoding      = errors.New("multipart: invalid encoding")
	ErrConversion           = errors.New("multipart: conversion error")
	ErrPayloadTooLarge      = errors.New("multipart: payload too large")
	ErrDeserialization      = errors.New("multipart: deserialization error")
	ErrUnsupportedDecoder   = errors.New("multipart: unsupported decoder")
	ErrUnsupportedMediaType = errors.New("multipart: unsupported media type")
	ErrMissingContentType   = errors.New("multipart: missing content type")
	ErrMissingBoundary      = errors.New("multipart: missing boundary")
	ErrDecoderUsed          = errors.New("multipart: decoder already used")
)

func (k Kind) sentinel() error {
	switch k {
	case KindMalformedStream:
		return ErrMalformedStream
	case KindUnknownField:
		return ErrUnknownField
	case KindDuplicateField:
		return ErrDuplicateField
	case KindMissingField:
		return ErrMissingField
	case KindInvalidEncoding:
		return ErrInvalidEncoding
	case KindConversionError:
		return ErrConversion
	case KindPayloadTooLarge:
		return ErrPayloadTooLarge
	case KindDeserializationError:
		return ErrDeserialization
	case KindUnsupportedDecoder:
		return ErrUnsupportedDecoder
	}
	return nil
}

// FieldError describes a failure attributable to a single field of the
// target. Field errors are collected while the stream is read and reported
// together in a [MultipartError].
type FieldError struct {
	Field string
	Kind  Kind

	// Expected names the target type of a conversion, or the format of a
	// structured payload.
	Expected string

	// Raw holds the offending text of a failed conversion.
	Raw string

	// Limit is the size limit that was exceeded, in bytes.
	Limit int64

	Err error
}

func (e *FieldError) Error() string {
	return "multipart: " + e.Problem()
}

// Problem returns a human readable description of the failure without the
// package prefix, suitable for listing in a response body.
func (e *FieldError) Problem() string {
	var msg string
	switch e.Kind {
	case KindUnknownField:
		msg = "unknown field"
	case KindDuplicateField:
		msg = "field given more than once"
	case KindMissingField:
		msg = "missing required field"
	case KindInvalidEncoding:
		msg = "value is not valid UTF-8"
	case KindConversionError:
		msg = fmt.Sprintf("cannot convert %q to %s", e.Raw, e.Expected)
	case KindPayloadTooLarge:
		msg = "value exceeds " + strconv.FormatInt(e.Limit, 10) + " bytes"
	case KindDeserializationError:
		msg = "cannot deserialize " + e.Expected + " payload"
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("field %q: %s", e.Field, msg)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel error for the kind of e.
func (e *FieldError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// MultipartError is the composite failure of an extraction. It lists every
// field failure in the order it was encountered.
type MultipartError struct {
	Errors []*FieldError
}

func (e *MultipartError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multipart: %d field errors: %s", len(e.Errors), strings.Join(e.Problems(), "; "))
}

// Problems returns one human readable line per field failure.
func (e *MultipartError) Problems() []string {
	problems := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		problems[i] = fe.Problem()
	}
	return problems
}

// Unwrap exposes the individual field errors to [errors.Is] and [errors.As].
func (e *MultipartError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// Fields returns the names of the fields that failed with the given kind.
func (e *MultipartError) Fields(kind Kind) []string {
	var names []string
	for _, fe := range e.Errors {
		if fe.Kind == kind {
			names = append(names, fe.Field)
		}
	}
	return names
}

// StatusCode maps the failure to an HTTP status: 413 when any field was too
// large, 400 otherwise.
func (e *MultipartError) StatusCode() int {
	for _, fe := range e.Errors {
		if fe.Kind == KindPayloadTooLarge {
			return http.StatusRequestEntityTooLarge
		}
	}
	return http.StatusBadRequest
}

// StreamError is a stream level failure. It aborts the extraction
// immediately since no further part can be trusted.
type StreamError struct {
	Kind  Kind
	Limit int64
	Err   error
}

func (e *StreamError) Error() string {
	switch e.Kind {
	case KindPayloadTooLarge:
		return "multipart: request body exceeds " + strconv.FormatInt(e.Limit, 10) + " bytes"
	default:
		if e.Err == nil {
			return "multipart: malformed stream"
		}
		return "multipart: malformed stream: " + e.Err.Error()
	}
}

func (e *StreamError) Unwrap() error { return e.Err }

func (e *StreamError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// StatusCode maps the failure to an HTTP status.
func (e *StreamError) StatusCode() int {
	if e.Kind == KindPayloadTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// UnsupportedDecoderError is returned while building a [Schema] when a field
// cannot be decoded: its Go type has no decoder, or its structured format is
// not registered.
type UnsupportedDecoderError struct {
	Field  string
	Type   reflect.Type
	Format string
}

func (e *UnsupportedDecoderError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("multipart: field %q: format %q is not registered", e.Field, e.Format)
	}
	if e.Type == nil {
		return fmt.Sprintf("multipart: field %q: no decoder", e.Field)
	}
	return fmt.Sprintf("multipart: field %q: unsupported type %v", e.Field, e.Type)
}

func (e *UnsupportedDecoderError) Is(target error) bool {
	return target == ErrUnsupportedDecoder
}

// InvalidUnmarshalError describes an invalid argument passed to
// [Decoder.Decode]. (The argument must be a non-nil pointer to a struct.)
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "multipart: Decode(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "multipart: Decode(non-pointer " + e.Type.String() + ")"
	}
	if e.Type.Elem().Kind() != reflect.Struct {
		return "multipart: Decode(non-struct " + e.Type.String() + ")"
	}
	return "multipart: Decode(nil " + e.Type.String() + ")"
}

// StatusClientClosedRequest is the non-standard status reported when the
// client went away before the extraction finished.
const StatusClientClosedRequest = 499

// StatusCode returns the HTTP status a handler should answer with when an
// extraction fails with err. Errors that stem from the request map to 4xx,
// programming errors such as an invalid target or schema map to 500.
func StatusCode(err error) int {
	var (
		me *MultipartError
		se *StreamError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &me):
		return me.StatusCode()
	case errors.As(err, &se):
		return se.StatusCode()
	case errors.Is(err, ErrUnsupportedMediaType), errors.Is(err, ErrMissingContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrMissingBoundary):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
