// Package inventory models tracked items and the lifecycle state machine
// that governs their status transitions.
//
// Status changes are expressed as named operations (outbound, return, check,
// report-missing, dispose) rather than free-form writes. Validation runs
// locally before any remote call; the depot independently re-checks
// transition legality on its side.
package inventory
