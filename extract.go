package multipartenc

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// Extract decodes the multipart stream read from r into a new T, which must
// be a struct type. On failure the zero T is returned with the error.
func Extract[T any](ctx context.Context, r io.Reader, boundary string, opts ...Option) (T, error) {
	var v T
	if err := NewDecoder(r, boundary, opts...).DecodeContext(ctx, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// FromRequest decodes the multipart/form-data body of r into a new T. The
// request context bounds the extraction.
//
// Example:
//
//	type UploadRequest struct {
//		Title   string   `multipart:"title"`
//		Tags    []string `multipart:"tags"`
//		Avatar  *File    `multipart:"avatar"`
//	}
//
//	func upload(w http.ResponseWriter, r *http.Request) {
//		req, err := multipartenc.FromRequest[UploadRequest](r)
//		if err != nil {
//			http.Error(w, err.Error(), multipartenc.StatusCode(err))
//			return
//		}
//		// req is fully populated
//	}
func FromRequest[T any](r *http.Request, opts ...Option) (T, error) {
	var v T
	if err := Bind(r, &v, opts...); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Bind decodes the multipart/form-data body of r into the struct pointed to
// by v.
func Bind(r *http.Request, v any, opts ...Option) error {
	boundary, err := Boundary(r.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	return NewDecoder(r.Body, boundary, opts...).DecodeContext(r.Context(), v)
}

// BindValues decodes the multipart/form-data body of r against a schema.
func BindValues(r *http.Request, s *Schema, opts ...Option) (*Values, error) {
	boundary, err := Boundary(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return NewDecoder(r.Body, boundary, opts...).DecodeValues(r.Context(), s)
}

// Boundary returns the boundary parameter of a multipart/form-data content
// type.
func Boundary(contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("%w: expected multipart/form-data", ErrMissingContentType)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}
	if mediaType != "multipart/form-data" {
		return "", fmt.Errorf("%w: got %s, expected multipart/form-data", ErrUnsupportedMediaType, mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", ErrMissingBoundary
	}
	return boundary, nil
}
