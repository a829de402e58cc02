package style

import (
	"errors"
	"fmt"
)

// PlatformKey is the reserved key holding platform-conditional branches.
//
//	{"color": "red", "...Platform": {"ios": {"color": "blue"}, "default": {"color": "gray"}}}
//	{"padding": {"...Platform": {"android": 8, "default": 4}}}
const PlatformKey = "...Platform"

// MaxDepth bounds how deeply descriptors may nest. Anything deeper is almost
// certainly a cyclic structure.
const MaxDepth = 64

// ErrTooDeep is returned by Normalize for descriptors nested beyond MaxDepth.
var ErrTooDeep = errors.New("style nesting too deep")

// Fragment is a single style mapping as written by callers. Values may be
// primitives, nested mappings, slices, or platform-conditional mappings.
type Fragment map[string]any

// Normalized is a flat, conditional-free style mapping.
type Normalized map[string]any

// Normalize flattens a descriptor and resolves its platform-conditional
// entries for p.
//
// Sequences are merged left to right with last-write-wins semantics, nested
// sequences recursively; nil, false and other non-mapping elements are
// skipped. A bare mapping is a one-element sequence. Anything else yields an
// empty style. The input is never modified.
func Normalize(v any, p Platform) (Normalized, error) {
	flat := make(map[string]any)
	if err := flatten(flat, v, 0); err != nil {
		return nil, err
	}

	out, err := resolveMap(flat, p, 0)
	if err != nil {
		return nil, err
	}
	return Normalized(out), nil
}

func flatten(dst map[string]any, v any, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("flatten: %w", ErrTooDeep)
	}

	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if err := flatten(dst, item, depth+1); err != nil {
				return err
			}
		}
	case []Fragment:
		for _, item := range val {
			for k, x := range item {
				dst[k] = x
			}
		}
	case []map[string]any:
		for _, item := range val {
			for k, x := range item {
				dst[k] = x
			}
		}
	default:
		if m, ok := asMap(v); ok {
			for k, x := range m {
				dst[k] = x
			}
		}
	}
	return nil
}

// resolveMap copies m, resolving conditionals at every depth. Keys merged
// from a selected platform branch take precedence over their siblings.
func resolveMap(m map[string]any, p Platform, depth int) (map[string]any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("resolve: %w", ErrTooDeep)
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == PlatformKey {
			continue
		}
		rv, ok, err := resolveValue(v, p, depth+1)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = rv
		}
	}

	branches, ok := asMap(m[PlatformKey])
	if !ok {
		return out, nil
	}
	selected, ok := p.Select(branches)
	if !ok {
		return out, nil
	}
	sm, ok := asMap(selected)
	if !ok {
		// A primitive branch has no keys to contribute.
		return out, nil
	}
	merged, err := resolveMap(sm, p, depth+1)
	if err != nil {
		return nil, err
	}
	for k, v := range merged {
		out[k] = v
	}
	return out, nil
}

// resolveValue resolves a single property value. ok is false when the value
// is a conditional with no branch for the platform.
func resolveValue(v any, p Platform, depth int) (any, bool, error) {
	if depth > MaxDepth {
		return nil, false, fmt.Errorf("resolve: %w", ErrTooDeep)
	}

	if m, isMap := asMap(v); isMap {
		if raw, isCond := conditional(m); isCond {
			branches, ok := asMap(raw)
			if !ok {
				return nil, false, nil
			}
			selected, ok := p.Select(branches)
			if !ok {
				return nil, false, nil
			}
			return resolveValue(selected, p, depth+1)
		}
		rm, err := resolveMap(m, p, depth+1)
		return rm, err == nil, err
	}

	if s, isSlice := v.([]any); isSlice {
		out := make([]any, 0, len(s))
		for _, item := range s {
			rv, ok, err := resolveValue(item, p, depth+1)
			if err != nil {
				return nil, false, err
			}
			if ok {
				out = append(out, rv)
			}
		}
		return out, true, nil
	}

	return v, true, nil
}

// conditional reports whether m consists solely of the reserved key.
func conditional(m map[string]any) (any, bool) {
	if len(m) != 1 {
		return nil, false
	}
	raw, ok := m[PlatformKey]
	return raw, ok
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Fragment:
		return m, true
	case Normalized:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, x := range m {
			out[fmt.Sprint(k)] = x
		}
		return out, true
	default:
		return nil, false
	}
}
