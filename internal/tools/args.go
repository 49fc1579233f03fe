package tools

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Args holds the raw JSON value of each supplied parameter.
type Args map[string]json.RawMessage

func decodeArgs(raw json.RawMessage) (Args, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Args{}, nil
	}
	var args Args
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, paramError("params must be a JSON object: %v", err)
	}
	if args == nil {
		args = Args{}
	}
	return args, nil
}

// Has reports whether name was supplied with a non-null value.
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// String returns the string value of name, or def when it is absent.
func (a Args) String(name, def string) (string, error) {
	var v string
	ok, err := a.decode(name, &v, TypeString)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Float returns the numeric value of name, or def when it is absent.
func (a Args) Float(name string, def float64) (float64, error) {
	var v float64
	ok, err := a.decode(name, &v, TypeNumber)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Int returns the integer value of name, or def when it is absent.
func (a Args) Int(name string, def int64) (int64, error) {
	var v int64
	ok, err := a.decode(name, &v, TypeInteger)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Bool returns the boolean value of name, or def when it is absent.
func (a Args) Bool(name string, def bool) (bool, error) {
	var v bool
	ok, err := a.decode(name, &v, TypeBoolean)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Into decodes the whole parameter object into v.
func (a Args) Into(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return paramError("re-encode params: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return paramError("%v", err)
	}
	return nil
}

func (a Args) decode(name string, v any, typ string) (bool, error) {
	if !a.Has(name) {
		return false, nil
	}
	if err := json.Unmarshal(a[name], v); err != nil {
		return false, paramError("parameter %q must be a %s", name, typ)
	}
	return true, nil
}

func (a Args) names() []string {
	out := make([]string, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
