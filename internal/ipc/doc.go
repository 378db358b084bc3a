// Package ipc carries control traffic between the tally CLI and the tallyd
// station daemon over a Unix domain socket using JSON-RPC.
package ipc
