// Package common contains shared constants and sentinel errors used across
// NewsMarks components.
package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on authenticated requests.
const AccessTokenHeaderName = "access_token"
