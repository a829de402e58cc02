package style

import "runtime"

// Platform names understood by the conditional branches of a descriptor.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
	PlatformMacOS   = "macos"
	PlatformWindows = "windows"

	// DefaultBranch is the fallback branch of a conditional mapping.
	DefaultBranch = "default"
)

// Platform identifies the current platform and picks conditional branches.
type Platform interface {
	// Name returns the platform identity, e.g. "ios".
	Name() string

	// Select picks the branch for this platform from a branch mapping,
	// falling back to the default branch. ok is false when neither exists.
	Select(branches map[string]any) (value any, ok bool)
}

// StaticPlatform is a Platform with a fixed name.
type StaticPlatform string

// Name returns the platform name.
func (p StaticPlatform) Name() string { return string(p) }

// Select returns the branch named after the platform, or the default branch.
func (p StaticPlatform) Select(branches map[string]any) (any, bool) {
	if v, ok := branches[string(p)]; ok {
		return v, true
	}
	if v, ok := branches[DefaultBranch]; ok {
		return v, true
	}
	return nil, false
}

// HostPlatform maps the running GOOS onto a platform name.
func HostPlatform() StaticPlatform {
	switch runtime.GOOS {
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "js", "wasip1":
		return PlatformWeb
	default:
		return StaticPlatform(runtime.GOOS)
	}
}
