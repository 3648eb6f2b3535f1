// Package schema validates generation requests arriving from clients and the
// JSON documents returned by the language-model provider. Every decoder checks
// presence and type of each field before any field is used; a document that
// fails validation is never partially returned.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	// Subject names the document that was validated, e.g. "generation request".
	Subject     string
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.FieldErrors[k])
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// fields is a decoded JSON object whose members have not been interpreted yet.
type fields struct {
	subject string
	raw     map[string]json.RawMessage
	errs    map[string]string
}

// object decodes data as a JSON object. A non-object document yields a
// ValidationError keyed on "_".
func object(subject string, data []byte) (*fields, error) {
	f := &fields{subject: subject, errs: map[string]string{}}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ValidationError{Subject: subject, FieldErrors: map[string]string{"_": "must be a JSON object"}}
	}
	if err := json.Unmarshal(trimmed, &f.raw); err != nil {
		return nil, &ValidationError{Subject: subject, FieldErrors: map[string]string{"_": "malformed JSON: " + err.Error()}}
	}
	return f, nil
}

func (f *fields) present(key string) bool {
	v, ok := f.raw[key]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// str reads a string member. Required members must be present; nonEmpty
// additionally rejects whitespace-only values.
func (f *fields) str(key string, required, nonEmpty bool) string {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(f.raw[key], &s); err != nil {
		f.errs[key] = "must be a string"
		return ""
	}
	if nonEmpty && strings.TrimSpace(s) == "" {
		f.errs[key] = "must not be empty"
	}
	return s
}

func (f *fields) boolean(key string, required bool) bool {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return false
	}
	var b bool
	if err := json.Unmarshal(f.raw[key], &b); err != nil {
		f.errs[key] = "must be a boolean"
	}
	return b
}

func (f *fields) number(key string, required bool) (float64, bool) {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(f.raw[key], &n); err != nil {
		f.errs[key] = "must be a number"
		return 0, false
	}
	return n, true
}

func (f *fields) stringList(key string, required bool) []string {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return nil
	}
	var ss []string
	if err := json.Unmarshal(f.raw[key], &ss); err != nil {
		f.errs[key] = "must be an array of strings"
		return nil
	}
	if ss == nil {
		ss = []string{}
	}
	return ss
}

func (f *fields) stringMap(key string, required bool) map[string]string {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(f.raw[key], &m); err != nil {
		f.errs[key] = "must be an object of string values"
		return nil
	}
	return m
}

// nested decodes key as an object and records its field errors under
// "key.field".
func (f *fields) nested(key string, required bool) *fields {
	if !f.present(key) {
		if required {
			f.errs[key] = "is required"
		}
		return nil
	}
	n, err := object(f.subject, f.raw[key])
	if err != nil {
		f.errs[key] = "must be an object"
		return nil
	}
	return n
}

func (f *fields) absorb(prefix string, n *fields) {
	if n == nil {
		return
	}
	for k, v := range n.errs {
		f.errs[prefix+"."+k] = v
	}
}

func (f *fields) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return &ValidationError{Subject: f.subject, FieldErrors: f.errs}
}
