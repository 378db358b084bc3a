package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"tally/internal/inventory"
	"tally/internal/journal"
)

func sampleItems() []inventory.Item {
	entered := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return []inventory.Item{
		{
			ID:               "0a1b2c3d-1111-4222-8333-444455556666",
			ShortID:          "0A1B2C3D",
			ItemDefinitionID: 7,
			WarehouseID:      1,
			Status:           inventory.StatusInStock,
			EntryDate:        entered,
			LastUpdated:      entered,
			ItemDefinition:   &inventory.Ref{ID: 7, Name: "thermal camera"},
			Warehouse:        &inventory.Ref{ID: 1, Name: "north depot"},
		},
		{
			ID:                 "9f8e7d6c-2222-4333-8444-555566667777",
			ShortID:            "9F8E7D6C",
			ItemDefinitionID:   7,
			WarehouseID:        1,
			Status:             inventory.StatusLoanedOut,
			CurrentDestination: "Field Team B",
			EntryDate:          entered,
			LastUpdated:        entered,
			ItemDefinition:     &inventory.Ref{ID: 7, Name: "thermal camera"},
			Warehouse:          &inventory.Ref{ID: 1, Name: "north depot"},
		},
	}
}

func TestItemListRendersTable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "item", "list")
	if err != nil {
		t.Fatalf("item list: %v", err)
	}
	requireContains(t, out, "0A1B2C3D")
	requireContains(t, out, "9F8E7D6C")
	requireContains(t, out, "Thermal Camera")
	requireContains(t, out, "Loaned Out")
	requireContains(t, out, "Field Team B")
}

func TestItemListStatusFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "item", "list", "--status", "loaned-out")
	if err != nil {
		t.Fatalf("item list: %v", err)
	}
	requireContains(t, out, "9F8E7D6C")
	if strings.Contains(out, "0A1B2C3D") {
		t.Fatalf("expected in-stock item filtered out, got %q", out)
	}
}

func TestItemShowByShortCode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "item", "show", "0a1b2c3d")
	if err != nil {
		t.Fatalf("item show: %v", err)
	}
	requireContains(t, out, "0a1b2c3d-1111-4222-8333-444455556666")
	requireContains(t, out, "In Stock")
	requireContains(t, out, "North Depot")
}

func TestItemShowUnknownFails(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "show", "DEADBEEF"); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestItemOutboundRequiresDestination(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "outbound", "0A1B2C3D"); err == nil {
		t.Fatal("expected missing --destination to fail")
	}
}

func TestItemOutboundLoansItemOut(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "item", "outbound", "0A1B2C3D", "--destination", "Survey Crew")
	if err != nil {
		t.Fatalf("item outbound: %v", err)
	}
	requireContains(t, out, "Loaned Out")
	requireContains(t, out, "Survey Crew")
}

func TestItemOutboundRejectsLoanedItemLocally(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "outbound", "9F8E7D6C", "--destination", "Survey Crew"); err == nil {
		t.Fatal("expected loaned-out item to be rejected")
	}
}

func TestItemReportMissingUsesStatusEndpoint(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	out, err := runCLI(t, env, "item", "report-missing", "0A1B2C3D")
	if err != nil {
		t.Fatalf("item report-missing: %v", err)
	}
	requireContains(t, out, "Suspected Missing")
}

func TestItemReportMissingJournalsPriorDestination(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "report-missing", "9F8E7D6C"); err != nil {
		t.Fatalf("item report-missing: %v", err)
	}

	store, err := journal.OpenPath(env.journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	var transition *journal.Entry
	for i := range entries {
		if entries[i].Action == journal.ActionTransition {
			transition = &entries[i]
			break
		}
	}
	if transition == nil {
		t.Fatalf("no transition entry journaled, got %+v", entries)
	}
	if transition.ShortID != "9F8E7D6C" || transition.Detail != "report-missing" {
		t.Fatalf("transition entry = %+v", transition)
	}
	// The live destination is cleared by the transition; the journal keeps
	// the one the loan had.
	if transition.Destination != "Field Team B" {
		t.Fatalf("journaled destination = %q", transition.Destination)
	}
}

func TestItemTransferIsJournaled(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "transfer", "0A1B2C3D", "--warehouse", "2"); err != nil {
		t.Fatalf("item transfer: %v", err)
	}

	store, err := journal.OpenPath(env.journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	found := false
	for _, entry := range entries {
		if entry.Action == journal.ActionTransfer && strings.Contains(entry.Detail, "warehouse 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no transfer entry journaled, got %+v", entries)
	}
}

func TestItemDisposeIsTerminal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.depot.setItems(sampleItems()...)

	if _, err := runCLI(t, env, "item", "dispose", "0A1B2C3D"); err != nil {
		t.Fatalf("item dispose: %v", err)
	}
	if _, err := runCLI(t, env, "item", "return", "0A1B2C3D"); err == nil {
		t.Fatal("expected transition on disposed item to fail")
	}
}
