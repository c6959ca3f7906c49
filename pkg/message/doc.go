// Package message defines the request and response values that travel
// through a waypoint request. HTTP, stream and console variants share the
// Request and Response interfaces; each response instance owns the flags
// that record whether its headers and body have been sent.
package message
