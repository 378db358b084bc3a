// Package services provides shared error classification markers and context
// annotation helpers used across the depot client, batch coordinator, and
// scan station.
//
// Errors produced by components wrap one of the exported sentinel markers so
// callers can classify failures with errors.Is without depending on the
// producing package.
package services
