package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/stylecache/internal/style"
)

var errEmptyDocument = errors.New("empty style document")

// document is a style file read from disk or stdin, held as JSON so that
// gjson paths work for YAML sources too.
type document struct {
	Name string
	JSON []byte
}

// readDocument reads a JSON or YAML style document. "-" reads stdin.
func readDocument(arg string) (*document, error) {
	var (
		b   []byte
		err error
	)
	if arg == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", arg, err)
	}
	return parseDocument(arg, b)
}

func parseDocument(name string, b []byte) (*document, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, errEmptyDocument
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".yaml" && ext != ".yml" && gjson.ValidBytes(b) {
		return &document{Name: name, JSON: b}, nil
	}

	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%s is neither JSON nor YAML: %w", name, err)
	}
	j, err := json.Marshal(toJSONCompatible(v))
	if err != nil {
		return nil, fmt.Errorf("unable to convert %s: %w", name, err)
	}
	return &document{Name: name, JSON: j}, nil
}

// toJSONCompatible turns YAML's map[any]any (non-string keys) into
// map[string]any.
func toJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[k] = toJSONCompatible(x)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[fmt.Sprint(k)] = toJSONCompatible(x)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = toJSONCompatible(x)
		}
		return out
	default:
		return v
	}
}

// Select returns the value at a gjson path, or the whole document for an
// empty path.
func (d *document) Select(path string) (gjson.Result, error) {
	if path == "" {
		return gjson.ParseBytes(d.JSON), nil
	}
	r := gjson.GetBytes(d.JSON, path)
	if !r.Exists() {
		return r, fmt.Errorf("path %q not found in %s", path, d.Name)
	}
	return r, nil
}

// Input selects a single style argument.
func (d *document) Input(path string) (style.Input, error) {
	r, err := d.Select(path)
	if err != nil {
		return style.Input{}, err
	}
	return style.FromAny(r.Value()), nil
}

// Inputs treats the selected value as a collection of styles: an array
// yields its elements, an object its values keyed by name.
func (d *document) Inputs(path string) (map[string]style.Input, error) {
	r, err := d.Select(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]style.Input)
	switch {
	case r.IsArray():
		for i, item := range r.Array() {
			out[fmt.Sprintf("%d", i)] = style.FromAny(item.Value())
		}
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			out[key.String()] = style.FromAny(value.Value())
			return true
		})
	default:
		return nil, fmt.Errorf("%s: expected a list or map of styles, got %s", d.Name, r.Type)
	}
	return out, nil
}
