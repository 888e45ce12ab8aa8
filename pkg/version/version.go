// Package version holds the application version, overridden at build time
// via -ldflags "-X smartnav/pkg/version.Version=...".
package version

// Version is the application version string.
var Version = "0.3.0-dev"
