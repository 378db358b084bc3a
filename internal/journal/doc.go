// Package journal persists a local record of scans and operations issued
// from a station. It backs the operator's "what did I just scan" view and
// survives depot outages; the depot's own audit log is the system of record.
package journal
