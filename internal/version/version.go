// Package version carries the build version string.
package version

// Version is overridable at build time via -ldflags.
var Version = "3.0.0"
