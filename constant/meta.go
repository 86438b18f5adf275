// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "hlsplay"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the GitHub owner/name that releases are published under.
	Repository = "hlsplay/hlsplay"

	// UserAgent is sent with manifest requests.
	UserAgent = "hlsplay/" + Version
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
