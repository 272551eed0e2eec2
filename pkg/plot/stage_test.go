package plot

import "testing"

func TestTransitionOrder(t *testing.T) {
	want := []Stage{StageAwaitingX2, StageAwaitingY1, StageAwaitingY2, StageCalibrated, StageCalibrated}

	s := StageAwaitingX1
	for i, w := range want {
		s = Transition(s, EventReference)
		if s != w {
			t.Fatalf("step %d: expected %s, got %s", i, w, s)
		}
	}

	if s = Transition(s, EventReset); s != StageAwaitingX1 {
		t.Fatalf("expected reset to return to %s, got %s", StageAwaitingX1, s)
	}
}

func TestStageSlot(t *testing.T) {
	tests := []struct {
		stage Stage
		slot  Slot
		ok    bool
	}{
		{StageAwaitingX1, SlotX1, true},
		{StageAwaitingX2, SlotX2, true},
		{StageAwaitingY1, SlotY1, true},
		{StageAwaitingY2, SlotY2, true},
		{StageCalibrated, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			slot, ok := tt.stage.Slot()
			if slot != tt.slot || ok != tt.ok {
				t.Errorf("Slot() = %q, %t, want %q, %t", slot, ok, tt.slot, tt.ok)
			}
		})
	}
}

func TestStageOf(t *testing.T) {
	var refs ReferencePoints
	if s := StageOf(refs); s != StageAwaitingX1 {
		t.Fatalf("expected %s, got %s", StageAwaitingX1, s)
	}

	for _, slot := range Slots {
		refs.Set(slot, Pt(1, 1))
	}
	if s := StageOf(refs); s != StageCalibrated {
		t.Fatalf("expected %s, got %s", StageCalibrated, s)
	}
	if next, ok := refs.Next(); ok {
		t.Fatalf("expected no free slot, got %s", next)
	}
}
