package errorz

import "strings"

// InvalidInput signals that a provided input is invalid due to the wrapped errors.
type InvalidInput []error

func (e InvalidInput) Error() string {
	var b strings.Builder
	b.WriteString("invalid input:\n")
	for _, err := range e {
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e InvalidInput) Unwrap() []error {
	return e
}

// Fields maps the keyed errors to their keys, so views can show them next to form fields.
// Errors without a key are collected under the empty string.
func (e InvalidInput) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, err := range e {
		key := ""
		msg := err.Error()
		if k, ok := err.(Keyed); ok {
			key = k.Key
			msg = k.Err.Error()
		}

		if prev, ok := out[key]; ok {
			msg = prev + "; " + msg
		}
		out[key] = msg
	}
	return out
}
