// Package multipartenc provides typed decoding of multipart/form-data streams
// into Go values.
//
// Each part of the stream is matched by name against the field descriptors
// of a [Schema], decoded as text, binary or a structured payload, and checked
// against the cardinality of its field. Schemas are derived from struct tags
// with [SchemaFor] or written by hand with [NewSchema]. Failures are
// collected rather than returned at the first problem, so a single
// [MultipartError] lists everything wrong with a request. No partially
// populated value is ever returned.
package multipartenc
