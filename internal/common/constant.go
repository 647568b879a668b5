// Package common contains shared constants and sentinel errors used across
// scorecard components.
package common

// UsernameHeaderName is the HTTP header carrying the locally stored
// username, attached to every outbound request.
const UsernameHeaderName = "X-Username"
