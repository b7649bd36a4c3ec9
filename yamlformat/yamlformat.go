// Package yamlformat registers the "yaml" structured payload format with
// multipartenc. Import it for its side effect:
//
//	import _ "github.com/tomasbasham/multipartenc/yamlformat"
//
// Fields tagged `multipart:"name,yaml"` are then decoded with
// [gopkg.in/yaml.v3]. Unknown keys are rejected.
package yamlformat

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tomasbasham/multipartenc"
)

// Name is the format name the package registers.
const Name = "yaml"

func init() {
	multipartenc.RegisterFormat(Name, multipartenc.FormatFunc(Unmarshal))
}

// Unmarshal decodes a single YAML document into v. Empty documents are
// rejected, as are keys that do not map to a field of v.
func Unmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}
