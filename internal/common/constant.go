// Package common contains shared constants and sentinel errors used across
// projectboard components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// RequestIDHeaderName correlates a request across logs and responses.
	RequestIDHeaderName = "X-Request-ID"

	// DateLayout is the wire format for project start/end dates.
	DateLayout = "2006-01-02"
)
