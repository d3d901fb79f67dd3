// Package client talks to the shopkeeper gRPC endpoint on behalf of the CLI.
//
// GRPCClient keeps the session token returned by Signup or Login and attaches
// it to every cart call through a unary interceptor. gRPC status codes are
// mapped to the sentinel errors in errors.go so callers can use errors.Is.
package client
