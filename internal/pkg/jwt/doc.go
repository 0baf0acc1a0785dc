// Package jwt issues and verifies the access tokens used by the HTTP API.
//
// Claims wrap the registered JWT fields with the authenticated user's ID
// and email. Symmetric is the HS512 implementation, and the context
// helpers carry verified claims from middleware to handlers.
package jwt
