package multipartenc

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Unmarshaler is the interface implemented by types that can unmarshal the
// text of a part into themselves. UnmarshalPart is called with the decoded
// UTF-8 body and takes precedence over [encoding.TextUnmarshaler].
type Unmarshaler interface {
	UnmarshalPart(string) error
}

var (
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType        = reflect.TypeFor[time.Duration]()
)

// textConverter converts the text of a part into a value of a fixed type.
type textConverter func(s string) (reflect.Value, error)

// converterFor returns the text converter for t, or false when values of t
// cannot be produced from text.
func converterFor(t reflect.Type) (textConverter, bool) {
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return func(s string) (reflect.Value, error) {
			v := reflect.New(t)
			if err := v.Interface().(Unmarshaler).UnmarshalPart(s); err != nil {
				return reflect.Value{}, err
			}
			return v.Elem(), nil
		}, true
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return func(s string) (reflect.Value, error) {
			v := reflect.New(t)
			if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, err
			}
			return v.Elem(), nil
		}, true
	}
	if t == durationType {
		return func(s string) (reflect.Value, error) {
			d, err := time.ParseDuration(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		}, true
	}

	switch t.Kind() {
	case reflect.String:
		return func(s string) (reflect.Value, error) {
			v := reflect.New(t).Elem()
			v.SetString(s)
			return v, nil
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(s string) (reflect.Value, error) {
			i, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, numError(err)
			}
			v := reflect.New(t).Elem()
			v.SetInt(i)
			return v, nil
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(s string) (reflect.Value, error) {
			u, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, numError(err)
			}
			v := reflect.New(t).Elem()
			v.SetUint(u)
			return v, nil
		}, true
	case reflect.Float32, reflect.Float64:
		return func(s string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return reflect.Value{}, numError(err)
			}
			v := reflect.New(t).Elem()
			v.SetFloat(f)
			return v, nil
		}, true
	case reflect.Bool:
		return func(s string) (reflect.Value, error) {
			b, err := parseBool(s)
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetBool(b)
			return v, nil
		}, true
	}
	return nil, false
}

// parseBool accepts the forms of [strconv.ParseBool] plus the checkbox style
// on/off and yes/no.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, numError(err)
	}
	return b, nil
}

// numError strips the function name and input from strconv errors; both are
// already part of a conversion FieldError.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

const maxRawLen = 64

// truncate shortens s for inclusion in error messages.
func truncate(s string) string {
	if len(s) <= maxRawLen {
		return s
	}
	// Back off to a rune boundary so the quoted value stays readable.
	n := maxRawLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return fmt.Sprintf("%s...", s[:n])
}
