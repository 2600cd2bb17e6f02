package led

import (
	"errors"
	"testing"
)

func TestFakeDriverRecordsStates(t *testing.T) {
	f := NewFakeDriver()
	f.Set(true)
	f.Set(false)
	f.Set(true)

	want := []bool{true, false, true}
	if len(f.States) != len(want) {
		t.Fatalf("recorded %d states, want %d", len(f.States), len(want))
	}
	for i := range want {
		if f.States[i] != want[i] {
			t.Errorf("state %d: got %v, want %v", i, f.States[i], want[i])
		}
	}
	if !f.Current() {
		t.Error("current: got false, want true")
	}
}

func TestFakeDriverCurrentDefaultsOff(t *testing.T) {
	f := NewFakeDriver()
	if f.Current() {
		t.Error("LED must default to off")
	}
}

func TestFakeDriverSetError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("gpio fault")
	if err := f.Set(true); err == nil {
		t.Error("expected scripted error")
	}
	if len(f.States) != 0 {
		t.Errorf("errored Set must not record: %v", f.States)
	}
}

func TestFakeDriverClose(t *testing.T) {
	f := NewFakeDriver()
	f.Close()
	if !f.Closed {
		t.Error("expected Closed after Close")
	}
}
