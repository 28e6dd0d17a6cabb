package round

import "testing"

func TestDelta(t *testing.T) {
	made := true
	missed := false

	if got := Delta(3, nil); got != 0 {
		t.Fatalf("unrecorded result should score 0, got %d", got)
	}
	if got := Delta(3, &made); got != 8 {
		t.Fatalf("made bid of 3 should score +8, got %d", got)
	}
	if got := Delta(3, &missed); got != -8 {
		t.Fatalf("missed bid of 3 should score -8, got %d", got)
	}
	if got := Delta(0, &made); got != 5 {
		t.Fatalf("made zero bid should score +5, got %d", got)
	}
	if got := Delta(0, &missed); got != -5 {
		t.Fatalf("missed zero bid should score -5, got %d", got)
	}
}
