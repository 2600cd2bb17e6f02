package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	got, dropped := rb.drainAll()
	if got != nil || dropped != 0 {
		t.Errorf("expected empty drain, got %d items, %d dropped", len(got), dropped)
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got, dropped := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	if dropped != 0 {
		t.Errorf("dropped: got %d, want 0", dropped)
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	if got2, _ := rb.drainAll(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	rb := newRingBuffer(5)
	for i := 0; i < 8; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got, dropped := rb.drainAll()
	if dropped != 3 {
		t.Errorf("dropped: got %d, want 3", dropped)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	// Oldest three (0,1,2) were overwritten; 3..7 survive in order.
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i+3) {
			t.Errorf("item %d: expected payload %d, got %d", i, i+3, got[i].payload[0])
		}
	}
}

func TestRingBufferDrainResetsOverflow(t *testing.T) {
	rb := newRingBuffer(2)
	for i := 0; i < 4; i++ {
		rb.push(bufferedMsg{topic: "t"})
	}
	rb.drainAll()
	if rb.dropped != 0 || rb.overflow {
		t.Errorf("drain must reset overflow tracking: dropped=%d overflow=%v", rb.dropped, rb.overflow)
	}
	if rb.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", rb.len())
	}
	// A fresh overflow episode starts counting from zero.
	for i := 0; i < 3; i++ {
		rb.push(bufferedMsg{topic: "t"})
	}
	if _, dropped := rb.drainAll(); dropped != 1 {
		t.Errorf("dropped after refill: got %d, want 1", dropped)
	}
}

func TestRingBufferPreservesAttributes(t *testing.T) {
	rb := newRingBuffer(4)
	rb.push(bufferedMsg{topic: "status", payload: []byte("p"), qos: 1, retained: true})

	got, _ := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != "status" || got[0].qos != 1 || !got[0].retained {
		t.Errorf("attributes lost: %+v", got[0])
	}
}
