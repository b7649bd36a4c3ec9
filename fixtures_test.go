package multipartenc_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/tomasbasham/multipartenc"
)

// Profile is the target of the documented example: a required name,
// repeated tags and an optional binary avatar.
type Profile struct {
	Name   string   `multipart:"name"`
	Tags   []string `multipart:"tags"`
	Avatar *[]byte  `multipart:"avatar"`
}

type Account struct {
	Email    string         `multipart:"email"`
	Age      *int           `multipart:"age"`
	Admin    *bool          `multipart:"admin"`
	Scores   []float64      `multipart:"scores"`
	Timeout  *time.Duration `multipart:"timeout"`
	Colour   *Colour        `multipart:"colour"`
	Settings *Settings      `multipart:"settings,json"`
	Private  string         `multipart:"-"`
}

type Settings struct {
	Theme    string   `json:"theme"`
	Features []string `json:"features"`
}

type Upload struct {
	Title       string               `multipart:"title"`
	Document    multipartenc.File    `multipart:"document"`
	Attachments []*multipartenc.File `multipart:"attachments"`
	Thumbnail   *multipartenc.File   `multipart:"thumbnail,max=8"`
	Raw         [][]byte             `multipart:"raw"`
	Extra       map[string]any       `multipart:"extra,json"`
	Ignored     []multipartenc.File  `multipart:",ignore"`
}

// Colour implements multipartenc.Unmarshaler.
type Colour int

const (
	Red Colour = iota + 1
	Green
	Blue
)

func (c *Colour) UnmarshalPart(s string) error {
	switch s {
	case "red":
		*c = Red
	case "green":
		*c = Green
	case "blue":
		*c = Blue
	default:
		return fmt.Errorf("unknown colour %q", s)
	}
	return nil
}

// part is one part of a test body. An empty name writes a part without a
// name in its Content-Disposition.
type part struct {
	name        string
	filename    string
	contentType string
	body        string
}

func field(name, body string) part {
	return part{name: name, body: body}
}

func file(name, filename, contentType, body string) part {
	return part{name: name, filename: filename, contentType: contentType, body: body}
}

// encode writes parts as a multipart/form-data body and returns it with its
// boundary.
func encode(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		disposition := "form-data"
		if p.name != "" {
			disposition += fmt.Sprintf("; name=%q", p.name)
		}
		if p.filename != "" {
			disposition += fmt.Sprintf("; filename=%q", p.filename)
		}
		h.Set("Content-Disposition", disposition)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &b, w.Boundary()
}

// kinds lists the kinds of the field errors in err.
func kinds(err error) []multipartenc.Kind {
	me, ok := err.(*multipartenc.MultipartError)
	if !ok {
		return nil
	}
	out := make([]multipartenc.Kind, len(me.Errors))
	for i, fe := range me.Errors {
		out[i] = fe.Kind
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func repeat(s string, n int) string { return strings.Repeat(s, n) }
