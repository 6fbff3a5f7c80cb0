package layout

import (
	"testing"
	"time"
)

func TestDragDropGatedByEnabled(t *testing.T) {
	applied := []Intent{}
	d := &DragDrop{Apply: func(intent Intent) bool {
		applied = append(applied, intent)
		return true
	}}

	if d.Drop("a", "b") {
		t.Fatalf("drop applied while disabled")
	}

	d.SetEnabled(true)
	if !d.Drop("a", "b") {
		t.Fatalf("drop refused while enabled")
	}

	d.SetEnabled(false)
	if d.Drop("a", "b") {
		t.Fatalf("drop applied after disabling")
	}

	if len(applied) != 1 || applied[0] != (Intent{DraggedID: "a", TargetID: "b"}) {
		t.Fatalf("unexpected applied intents: %v", applied)
	}
}

func TestDragDropDiscardsDegenerateDrops(t *testing.T) {
	d := &DragDrop{Apply: func(Intent) bool {
		t.Fatalf("degenerate drop reached Apply")
		return false
	}}
	d.SetEnabled(true)

	if d.Drop("a", "a") || d.Drop("", "b") || d.Drop("a", "") {
		t.Fatalf("degenerate drop reported as applied")
	}
}

type trackerRecorder struct {
	taps   []string
	hovers []string
	drops  []Intent
}

func newTrackedPointer(clock *time.Time) (*PointerTracker, *trackerRecorder) {
	rec := &trackerRecorder{}
	tracker := &PointerTracker{
		Tap:   func(id string) { rec.taps = append(rec.taps, id) },
		Hover: func(id string) { rec.hovers = append(rec.hovers, id) },
		Drop:  func(intent Intent) { rec.drops = append(rec.drops, intent) },
		now:   func() time.Time { return *clock },
	}
	return tracker, rec
}

func TestShortPressIsATap(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(102, 101, "a") // under threshold
	tracker.Release("a")

	if len(rec.taps) != 1 || rec.taps[0] != "a" {
		t.Fatalf("expected one tap on a, got %v", rec.taps)
	}
	if len(rec.drops) != 0 {
		t.Fatalf("tap produced a drop: %v", rec.drops)
	}
}

func TestDragCrossesThresholdAndDrops(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(104, 103, "b") // Manhattan 7, past threshold
	if !tracker.Dragging() {
		t.Fatalf("expected drag after crossing threshold")
	}
	tracker.Move(120, 110, "c")
	tracker.Release("c")

	if len(rec.drops) != 1 || rec.drops[0] != (Intent{DraggedID: "a", TargetID: "c"}) {
		t.Fatalf("unexpected drops: %v", rec.drops)
	}
	if len(rec.taps) != 0 {
		t.Fatalf("drag also tapped: %v", rec.taps)
	}
	if len(rec.hovers) == 0 || rec.hovers[len(rec.hovers)-1] != "" {
		t.Fatalf("expected hover highlight cleared on release, got %v", rec.hovers)
	}
}

// Toolkits that report per-event deltas reconstruct the press point from the
// first event and must not press again mid-gesture: displacement accumulates
// from the original press, so many small steps still become a drag.
func TestSlowDragAccumulatesAcrossEvents(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	x := float32(100)
	for step := 0; step < 5; step++ {
		if !tracker.Active() {
			tracker.Press("a", x, 100)
		}
		x += 2 // each step alone is under the threshold
		tracker.Move(x, 100, "c")
	}

	if !tracker.Dragging() {
		t.Fatalf("10px of accumulated movement never registered as a drag")
	}
	tracker.Release("c")
	if len(rec.drops) != 1 || rec.drops[0] != (Intent{DraggedID: "a", TargetID: "c"}) {
		t.Fatalf("unexpected drops: %v", rec.drops)
	}
	if tracker.Active() {
		t.Fatalf("tracker still active after release")
	}
}

func TestHoverOverSelfReportsNoTarget(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(110, 100, "a")
	if len(rec.hovers) != 1 || rec.hovers[0] != "" {
		t.Fatalf("hovering the dragged tile should clear the highlight, got %v", rec.hovers)
	}
}

func TestDropOnSelfOrNothingIsDiscarded(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(110, 110, "")
	tracker.Release("")
	if len(rec.drops) != 0 {
		t.Fatalf("drop over nothing produced an intent: %v", rec.drops)
	}

	tracker.Press("a", 100, 100)
	tracker.Move(110, 110, "a")
	tracker.Release("a")
	if len(rec.drops) != 0 {
		t.Fatalf("self-drop produced an intent: %v", rec.drops)
	}
	if len(rec.taps) != 0 {
		t.Fatalf("drag release registered as a tap: %v", rec.taps)
	}
}

func TestTapSuppressedRightAfterDrag(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(110, 110, "b")
	tracker.Release("b")

	clock = clock.Add(100 * time.Millisecond)
	tracker.Press("b", 50, 50)
	tracker.Release("b")
	if len(rec.taps) != 0 {
		t.Fatalf("tap inside the suppression window fired: %v", rec.taps)
	}

	clock = clock.Add(TapSuppression)
	tracker.Press("b", 50, 50)
	tracker.Release("b")
	if len(rec.taps) != 1 || rec.taps[0] != "b" {
		t.Fatalf("tap after the window should fire, got %v", rec.taps)
	}
}

func TestCancelDropsGestureSilently(t *testing.T) {
	clock := time.Now()
	tracker, rec := newTrackedPointer(&clock)

	tracker.Press("a", 100, 100)
	tracker.Move(120, 120, "b")
	tracker.Cancel()
	tracker.Release("b")

	if len(rec.taps) != 0 || len(rec.drops) != 0 {
		t.Fatalf("cancelled gesture still fired: taps=%v drops=%v", rec.taps, rec.drops)
	}
	if rec.hovers[len(rec.hovers)-1] != "" {
		t.Fatalf("cancel left a stale highlight: %v", rec.hovers)
	}
}
