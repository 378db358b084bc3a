// Package batch coordinates lifecycle operations across many items at once.
// Input ids are deduplicated preserving first-seen order, dispatch is
// concurrent with one isolated result per unique id, and the caller's local
// view is updated only for items that succeed.
package batch
