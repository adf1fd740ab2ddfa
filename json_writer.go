package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// objectWriter builds a JSON object whose keys stay in the order they are
// written, so that workpapers diff line by line. Its zero value is ready to
// use; the first error is kept and returned by MarshalJSON.
type objectWriter struct {
	buf bytes.Buffer
	err error
}

// zeroer is implemented by Amount and date.Date.
type zeroer interface{ IsZero() bool }

func (w *objectWriter) write(key string, raw []byte) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
}

// Append writes key whatever its value.
func (w *objectWriter) Append(key string, value any) *objectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot encode %q: %w", key, err)
		return w
	}
	w.write(key, raw)
	return w
}

// Optional writes key unless value is empty: nil, a zero value, an empty
// list or map, or a value whose IsZero method reports true.
//
// A non-nil pointer is never empty: an explicit zero balance is persisted.
func (w *objectWriter) Optional(key string, value any) *objectWriter {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return w
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return w
		}
	case reflect.Slice, reflect.Map:
		if v.Len() == 0 {
			return w
		}
	default:
		if z, ok := value.(zeroer); (ok && z.IsZero()) || v.IsZero() {
			return w
		}
	}
	return w.Append(key, value)
}

// List writes key as a JSON list; a nil slice is written as [] rather than null.
func (w *objectWriter) List(key string, list any) *objectWriter {
	if v := reflect.ValueOf(list); v.Kind() == reflect.Slice && v.Len() == 0 {
		if w.err == nil {
			w.write(key, []byte("[]"))
		}
		return w
	}
	return w.Append(key, list)
}

// MarshalJSON returns the object built so far.
func (w *objectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}
