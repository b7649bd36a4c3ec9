package multipartenc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"reflect"
)

// Decoder reads a multipart/form-data stream from an [io.Reader] and decodes
// it into a Go value. A Decoder consumes its stream and can be used once.
type Decoder struct {
	r        io.Reader
	boundary string
	opts     options
	used     bool
}

// NewDecoder creates a new [Decoder] that reads the parts delimited by
// boundary from r.
func NewDecoder(r io.Reader, boundary string, opts ...Option) *Decoder {
	return &Decoder{r: r, boundary: boundary, opts: newOptions(opts)}
}

// Decode reads the multipart stream and stores the result in the struct
// pointed to by v. See [Decoder.DecodeContext].
func (d *Decoder) Decode(v any) error {
	return d.DecodeContext(context.Background(), v)
}

// DecodeContext reads the multipart stream and stores the result in the
// struct pointed to by v, whose schema is derived with [SchemaFor]. If v is
// nil or not a pointer to a struct, DecodeContext returns an
// [InvalidUnmarshalError].
//
// Either every field is stored or v is left untouched: field failures are
// reported together in a *[MultipartError], stream failures as a
// *[StreamError], cancellation as the error of ctx.
func (d *Decoder) DecodeContext(ctx context.Context, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &InvalidUnmarshalError{reflect.TypeOf(v)}
	}

	schema, err := SchemaFor(rv.Elem().Type())
	if err != nil {
		return err
	}

	agg, err := d.decode(ctx, schema)
	if err != nil {
		return err
	}
	agg.assign(rv.Elem())
	return nil
}

// DecodeValues reads the multipart stream against a schema, typically one
// built with [NewSchema].
func (d *Decoder) DecodeValues(ctx context.Context, s *Schema) (*Values, error) {
	agg, err := d.decode(ctx, s)
	if err != nil {
		return nil, err
	}
	return agg.result(), nil
}

func (d *Decoder) decode(ctx context.Context, s *Schema) (*aggregator, error) {
	if d.used {
		return nil, ErrDecoderUsed
	}
	d.used = true

	if d.boundary == "" {
		return nil, ErrMissingBoundary
	}

	wire := &wireReader{ctx: ctx, r: d.r, limit: d.opts.TotalLimit}
	dm := &demux{
		schema: s,
		opts:   &d.opts,
		wire:   wire,
		mr:     multipart.NewReader(wire, d.boundary),
		agg:    newAggregator(s),
	}
	if err := dm.run(ctx); err != nil {
		return nil, err
	}
	if err := dm.agg.finish(); err != nil {
		return nil, err
	}
	return dm.agg, nil
}

// demux walks the parts of a stream and routes each to the decoder of its
// field. Field failures go to the aggregator; stream failures end the walk.
type demux struct {
	schema *Schema
	opts   *options
	wire   *wireReader
	mr     *multipart.Reader
	agg    *aggregator
}

func (dm *demux) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("multipart: %w", err)
		}

		p, err := dm.mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return dm.streamError(err)
		}

		err = dm.part(ctx, p)
		_ = p.Close()
		if err != nil {
			return err
		}
	}
}

// part handles one part whose headers have been read.
func (dm *demux) part(ctx context.Context, p *multipart.Part) error {
	log := dm.opts.logger
	name := p.FormName()
	if name == "" {
		log.DebugContext(ctx, "multipart: skipping part without name")
		return dm.drain(p)
	}

	i, ok := dm.schema.byName[name]
	if !ok {
		if dm.opts.UnknownFields == Lenient {
			log.WarnContext(ctx, "multipart: ignoring unknown part", slog.String("field", name))
			return dm.drain(p)
		}
		dm.agg.fail(&FieldError{Field: name, Kind: KindUnknownField})
		return dm.drain(p)
	}

	if !dm.agg.observe(i) {
		return dm.drain(p)
	}

	f := dm.schema.fields[i]
	limit := f.maxSize
	if limit == 0 {
		limit = dm.opts.PartLimit
	}

	body, tooLarge, err := readBody(p, limit)
	if err != nil {
		return dm.streamError(err)
	}
	if tooLarge {
		dm.agg.fail(&FieldError{Field: name, Kind: KindPayloadTooLarge, Limit: limit})
		return dm.drain(p)
	}

	raw := &RawPart{
		FieldName:   name,
		Filename:    p.FileName(),
		ContentType: p.Header.Get("Content-Type"),
		Header:      p.Header,
		Body:        body,
	}
	v, fe := f.dec.decode(raw)
	if fe != nil {
		fe.Field = name
		dm.agg.fail(fe)
		log.DebugContext(ctx, "multipart: part rejected",
			slog.String("field", name),
			slog.String("kind", fe.Kind.String()),
		)
		return nil
	}
	dm.agg.add(i, v)
	log.DebugContext(ctx, "multipart: part decoded",
		slog.String("field", name),
		slog.String("decoder", f.dec.kind.String()),
		slog.Int("size", len(body)),
	)
	return nil
}

// drain discards the rest of the body of p.
func (dm *demux) drain(p *multipart.Part) error {
	if _, err := io.Copy(io.Discard, p); err != nil {
		return dm.streamError(err)
	}
	return nil
}

// streamError classifies a read failure. Cancellation and the total limit
// surface through the wire reader whatever the multipart reader made of
// them.
func (dm *demux) streamError(err error) error {
	switch {
	case dm.wire.ctxErr != nil:
		return fmt.Errorf("multipart: %w", dm.wire.ctxErr)
	case dm.wire.exceeded:
		return &StreamError{Kind: KindPayloadTooLarge, Limit: dm.wire.limit, Err: err}
	default:
		return &StreamError{Kind: KindMalformedStream, Err: err}
	}
}

// readBody reads at most limit bytes of r. It reports whether the body is
// larger than limit. A zero limit reads everything.
func readBody(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		b, err := io.ReadAll(r)
		return b, false, err
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > limit {
		return nil, true, nil
	}
	return b, false, nil
}

var errBodyTooLarge = errors.New("multipart: request body too large")

// wireReader counts the bytes read from the underlying stream, enforces
// the total limit and stops reading once ctx is done.
type wireReader struct {
	ctx   context.Context
	r     io.Reader
	limit int64
	n     int64

	exceeded bool
	ctxErr   error
}

func (w *wireReader) Read(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		w.ctxErr = err
		return 0, err
	}
	if w.limit > 0 {
		if w.exceeded {
			return 0, errBodyTooLarge
		}
		// Allow one byte past the limit to tell a body of exactly limit
		// bytes from a larger one.
		if rem := w.limit - w.n + 1; int64(len(p)) > rem {
			p = p[:rem]
		}
	}

	n, err := w.r.Read(p)
	w.n += int64(n)
	if w.limit > 0 && w.n > w.limit {
		w.exceeded = true
		return 0, errBodyTooLarge
	}
	return n, err
}
