// Package scanner acquires raw barcode and QR decodes from attached capture
// devices. The pipeline serializes session lifecycle so at most one capture
// session exists at a time, guarantees teardown of a replaced session before
// its successor launches, and drops decode callbacks that race a stop.
package scanner
