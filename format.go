package multipartenc

import (
	"encoding/json"
	"slices"
	"sync"
)

// Format deserializes the body of a structured payload part. Implementations
// must be safe for concurrent use.
type Format interface {
	Unmarshal(data []byte, v any) error
}

// The FormatFunc type is an adapter to allow the use of ordinary functions
// such as [json.Unmarshal] as a [Format].
type FormatFunc func(data []byte, v any) error

func (f FormatFunc) Unmarshal(data []byte, v any) error { return f(data, v) }

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]Format)
)

func init() {
	RegisterFormat("json", FormatFunc(json.Unmarshal))
}

// RegisterFormat makes a structured payload format available under name. It
// is intended to be called from the init function of the package providing
// the format, before any schema referencing it is built. If RegisterFormat is
// called twice with the same name or if f is nil, it panics.
func RegisterFormat(name string, f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	if f == nil {
		panic("multipart: RegisterFormat format is nil")
	}
	if _, dup := formats[name]; dup {
		panic("multipart: RegisterFormat called twice for format " + name)
	}
	formats[name] = f
}

// Formats returns a sorted list of the names of the registered formats.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupFormat(name string) (Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	f, ok := formats[name]
	return f, ok
}
