// Package depot implements the HTTP client for the remote inventory
// service. The depot is the source of truth for items; this client carries
// requests and decodes responses, mapping HTTP failures onto the service
// error markers.
package depot
