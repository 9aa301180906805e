package surface

import (
	"errors"
	"testing"
)

func TestNegotiatorLifecycle(t *testing.T) {
	display := NewSoftwareDisplay(DefaultCandidates())
	n := NewNegotiator(display, Opaque(16, 0), quietLogger())

	if n.State() != Uninitialized {
		t.Fatalf("State() = %v, expected %v", n.State(), Uninitialized)
	}
	if err := n.Frame(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Frame() before create error = %v, expected ErrInvalidState", err)
	}

	if err := n.SurfaceCreated(); err != nil {
		t.Fatalf("SurfaceCreated() failed: %v", err)
	}
	if n.State() != ContextCreated {
		t.Errorf("State() = %v, expected %v", n.State(), ContextCreated)
	}
	if n.Candidate().ID != 4 {
		t.Errorf("Candidate() = %v, expected config #4", n.Candidate())
	}
	if display.LiveContexts() != 1 {
		t.Errorf("LiveContexts() = %d, expected 1", display.LiveContexts())
	}

	if err := n.SurfaceChanged(320, 240); err != nil {
		t.Fatalf("SurfaceChanged() failed: %v", err)
	}
	if n.State() != Active {
		t.Errorf("State() = %v, expected %v", n.State(), Active)
	}
	if w, h := n.Size(); w != 320 || h != 240 {
		t.Errorf("Size() = %dx%d, expected 320x240", w, h)
	}

	for i := 0; i < 3; i++ {
		if err := n.Frame(); err != nil {
			t.Fatalf("Frame() failed: %v", err)
		}
	}
	if n.Frames() != 3 {
		t.Errorf("Frames() = %d, expected 3", n.Frames())
	}

	// Resizing an active surface keeps it active.
	if err := n.SurfaceChanged(640, 480); err != nil {
		t.Fatalf("SurfaceChanged() failed: %v", err)
	}
	if n.State() != Active {
		t.Errorf("State() = %v, expected %v", n.State(), Active)
	}

	if err := n.SurfaceDestroyed(); err != nil {
		t.Fatalf("SurfaceDestroyed() failed: %v", err)
	}
	if n.State() != Destroyed {
		t.Errorf("State() = %v, expected %v", n.State(), Destroyed)
	}
	if display.LiveContexts() != 0 {
		t.Errorf("LiveContexts() = %d, expected 0", display.LiveContexts())
	}
}

func TestNegotiatorDestroyReleasesOnce(t *testing.T) {
	display := &countingDisplay{Display: NewSoftwareDisplay(DefaultCandidates())}
	n := NewNegotiator(display, Translucent(16, 0), quietLogger())

	if err := n.SurfaceCreated(); err != nil {
		t.Fatalf("SurfaceCreated() failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := n.SurfaceDestroyed(); err != nil {
			t.Fatalf("SurfaceDestroyed() #%d failed: %v", i, err)
		}
	}
	if display.destroys != 1 {
		t.Errorf("DestroyContext calls = %d, expected 1", display.destroys)
	}
}

func TestNegotiatorDestroyBeforeCreateIsNoop(t *testing.T) {
	display := &countingDisplay{Display: NewSoftwareDisplay(DefaultCandidates())}
	n := NewNegotiator(display, Opaque(0, 0), quietLogger())

	if err := n.SurfaceDestroyed(); err != nil {
		t.Fatalf("SurfaceDestroyed() failed: %v", err)
	}
	if n.State() != Uninitialized {
		t.Errorf("State() = %v, expected %v", n.State(), Uninitialized)
	}
	if display.destroys != 0 {
		t.Errorf("DestroyContext calls = %d, expected 0", display.destroys)
	}
}

func TestNegotiatorRecreateAfterDestroy(t *testing.T) {
	display := &countingDisplay{Display: NewSoftwareDisplay(DefaultCandidates())}
	n := NewNegotiator(display, Opaque(16, 0), quietLogger())

	for round := 0; round < 2; round++ {
		if err := n.SurfaceCreated(); err != nil {
			t.Fatalf("round %d: SurfaceCreated() failed: %v", round, err)
		}
		if err := n.SurfaceChanged(100, 50); err != nil {
			t.Fatalf("round %d: SurfaceChanged() failed: %v", round, err)
		}
		if err := n.Frame(); err != nil {
			t.Fatalf("round %d: Frame() failed: %v", round, err)
		}
		if n.Frames() != 1 {
			t.Errorf("round %d: Frames() = %d, expected 1", round, n.Frames())
		}
		if err := n.SurfaceDestroyed(); err != nil {
			t.Fatalf("round %d: SurfaceDestroyed() failed: %v", round, err)
		}
	}

	// Each creation re-runs the full negotiation.
	if display.countQueries != 2 {
		t.Errorf("count queries = %d, expected 2", display.countQueries)
	}
	if display.creates != 2 || display.destroys != 2 {
		t.Errorf("creates/destroys = %d/%d, expected 2/2", display.creates, display.destroys)
	}
}

func TestNegotiatorInvalidTransitions(t *testing.T) {
	n := NewNegotiator(NewSoftwareDisplay(DefaultCandidates()), Opaque(16, 0), quietLogger())

	if err := n.SurfaceChanged(10, 10); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SurfaceChanged() before create error = %v, expected ErrInvalidState", err)
	}
	if err := n.SurfaceCreated(); err != nil {
		t.Fatalf("SurfaceCreated() failed: %v", err)
	}
	if err := n.SurfaceCreated(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second SurfaceCreated() error = %v, expected ErrInvalidState", err)
	}
	if err := n.Frame(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Frame() before resize error = %v, expected ErrInvalidState", err)
	}
	if err := n.SurfaceChanged(-1, 10); err == nil {
		t.Error("SurfaceChanged(-1, 10) should fail")
	}
}

func TestNegotiatorNoMatchResetsState(t *testing.T) {
	display := NewSoftwareDisplay([]CandidateSpec{spec(1, 8, 8, 8, 8, 24, 8)})
	n := NewNegotiator(display, Opaque(16, 0), quietLogger())

	err := n.SurfaceCreated()
	if !errors.Is(err, ErrNoMatchingConfig) {
		t.Fatalf("SurfaceCreated() error = %v, expected ErrNoMatchingConfig", err)
	}
	if n.State() != Uninitialized {
		t.Errorf("State() = %v, expected %v", n.State(), Uninitialized)
	}
	if n.Context() != NoContext {
		t.Errorf("Context() = %v, expected NoContext", n.Context())
	}
}

func TestNegotiatorContextFailureResetsState(t *testing.T) {
	display := &countingDisplay{
		Display:    NewSoftwareDisplay(DefaultCandidates()),
		failCreate: errors.New("driver refused"),
	}
	n := NewNegotiator(display, Opaque(16, 0), quietLogger())

	var cce *ContextCreationError
	if err := n.SurfaceCreated(); !errors.As(err, &cce) {
		t.Fatalf("SurfaceCreated() error = %v, expected ContextCreationError", err)
	}
	if n.State() != Uninitialized {
		t.Errorf("State() = %v, expected %v", n.State(), Uninitialized)
	}
	if err := n.SurfaceDestroyed(); err != nil {
		t.Errorf("SurfaceDestroyed() after failure = %v, expected nil", err)
	}
	if display.destroys != 0 {
		t.Errorf("DestroyContext calls = %d, expected 0", display.destroys)
	}
}
