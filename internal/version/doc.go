// Package version exposes autoclicker build metadata.
//
// Version, Commit and BuildTime are set through ldflags by release builds.
package version
