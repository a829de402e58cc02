// Package style normalizes raw style descriptors into flat, platform-resolved
// property maps and derives stable content fingerprints from them.
package style
