package style

import "fmt"

// DefaultTheme is used when no theme is supplied.
const DefaultTheme = "default"

// InputKind discriminates the variants of Input.
type InputKind int

const (
	// KindNone is the zero Input; it carries nothing and is skipped by batch operations.
	KindNone InputKind = iota

	// KindRef is a numeric reference to an already registered style.
	KindRef

	// KindHandle is an opaque handle produced by a Registrar.
	KindHandle

	// KindDescriptor is a raw style mapping or sequence of mappings.
	KindDescriptor
)

// String returns the string representation of the input kind
func (k InputKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRef:
		return "ref"
	case KindHandle:
		return "handle"
	case KindDescriptor:
		return "descriptor"
	default:
		return "unknown"
	}
}

// Handle is an opaque, render-ready style issued by a Registrar. Anything
// implementing Handle is treated as already registered: it is passed through
// untouched and never fingerprinted or persisted.
type Handle interface {
	HandleID() int64
}

// Input is a style argument as received from callers.
type Input struct {
	kind       InputKind
	ref        int64
	handle     Handle
	descriptor any
}

// Ref wraps a numeric style reference.
func Ref(id int64) Input {
	return Input{kind: KindRef, ref: id}
}

// Registered wraps a handle that has already been registered.
func Registered(h Handle) Input {
	return Input{kind: KindHandle, handle: h}
}

// Describe wraps a raw descriptor: a Fragment, a map[string]any, or an
// arbitrarily nested slice of those.
func Describe(v any) Input {
	return Input{kind: KindDescriptor, descriptor: v}
}

// FromAny classifies an untyped value, such as one decoded from JSON or YAML.
// Integral numbers become references, Handles stay handles and everything
// else is treated as a descriptor.
func FromAny(v any) Input {
	switch val := v.(type) {
	case nil:
		return Input{}
	case Input:
		return val
	case Handle:
		return Registered(val)
	case int:
		return Ref(int64(val))
	case int32:
		return Ref(int64(val))
	case int64:
		return Ref(val)
	case uint:
		return Ref(int64(val)) //nolint:gosec
	case uint32:
		return Ref(int64(val))
	case uint64:
		return Ref(int64(val)) //nolint:gosec
	case float64:
		if val == float64(int64(val)) {
			return Ref(int64(val))
		}
		return Describe(val)
	default:
		return Describe(val)
	}
}

// Kind reports which variant the input holds.
func (in Input) Kind() InputKind { return in.kind }

// IsZero reports whether the input carries nothing.
func (in Input) IsZero() bool { return in.kind == KindNone }

// RefID returns the numeric reference of a KindRef input.
func (in Input) RefID() int64 { return in.ref }

// Handle returns the handle of a KindHandle input.
func (in Input) Handle() Handle { return in.handle }

// Descriptor returns the raw descriptor of a KindDescriptor input.
func (in Input) Descriptor() any { return in.descriptor }

func (in Input) String() string {
	switch in.kind {
	case KindRef:
		return fmt.Sprintf("ref(%d)", in.ref)
	case KindHandle:
		return fmt.Sprintf("handle(%d)", in.handle.HandleID())
	case KindDescriptor:
		return fmt.Sprintf("descriptor(%T)", in.descriptor)
	default:
		return "none"
	}
}
