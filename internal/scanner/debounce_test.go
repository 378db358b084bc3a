package scanner

import (
	"testing"
	"time"
)

func TestDebouncerCollapsesRepeats(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	current := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	if !d.Allow("code-a") {
		t.Fatal("first decode suppressed")
	}
	current = current.Add(time.Second)
	if d.Allow("code-a") {
		t.Fatal("repeat inside window allowed")
	}
	if !d.Allow("code-b") {
		t.Fatal("different payload suppressed")
	}
}

func TestDebouncerRepeatExtendsWindow(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	current := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	d.Allow("code-a")
	// An item held in front of the camera keeps refreshing its window.
	current = current.Add(2 * time.Second)
	if d.Allow("code-a") {
		t.Fatal("repeat inside window allowed")
	}
	current = current.Add(2 * time.Second)
	if d.Allow("code-a") {
		t.Fatal("window did not extend on repeat")
	}
	current = current.Add(4 * time.Second)
	if !d.Allow("code-a") {
		t.Fatal("decode suppressed after window expired")
	}
}

func TestDebouncerZeroWindowPassesEverything(t *testing.T) {
	d := NewDebouncer(0)
	for i := 0; i < 3; i++ {
		if !d.Allow("code-a") {
			t.Fatal("zero-window debouncer suppressed a decode")
		}
	}
}
