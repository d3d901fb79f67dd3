// Package common contains shared constants and sentinel errors used across
// shopkeeper components.
package common

// AccessTokenHeaderName is the HTTP header and gRPC metadata key that carries
// the session token on cart requests.
const AccessTokenHeaderName = "auth-token"

// DefaultCartSize is the number of zeroed slots a new cart starts with.
const DefaultCartSize = 300
