package main

import (
	"strings"
	"testing"
)

func TestBatchOutboundMixedResults(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	// First id is loanable, second is already loaned out and fails local
	// validation before any depot call.
	_, err := runCLI(t, env, "batch", "outbound",
		"0a1b2c3d-1111-4222-8333-444455556666",
		"9f8e7d6c-2222-4333-8444-555566667777",
		"--destination", "Survey Crew")
	if err == nil {
		t.Fatal("expected partial failure to be reported")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected 1 of 2 failed, got %v", err)
	}
}

func TestBatchReportMissingWithoutLocalSnapshot(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems()

	// The ack-only status endpoint can succeed for an id the local view has
	// never seen; the result then carries no snapshot to render.
	out, err := runCLI(t, env, "batch", "report-missing",
		"5b6c7d8e-3333-4444-8555-666677778888")
	if err != nil {
		t.Fatalf("batch report-missing: %v", err)
	}
	requireContains(t, out, "ok")
	requireContains(t, out, "All 1 items succeeded.")
}

func TestBatchDedupesInput(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "batch", "dispose",
		"0a1b2c3d-1111-4222-8333-444455556666",
		"0a1b2c3d-1111-4222-8333-444455556666")
	if err != nil {
		t.Fatalf("batch dispose: %v", err)
	}
	requireContains(t, out, "All 1 items succeeded.")
}
