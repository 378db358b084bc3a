// Package station is the tallyd runtime: it owns the capture pipeline,
// resolves decodes against the depot, journals every scan locally, and
// serves the control surface the CLI talks to.
package station
