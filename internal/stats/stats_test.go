package stats

import "testing"

func TestRecordAcceptedTalliesOnlyRJVBTokens(t *testing.T) {
	s := New()
	s.RecordAccepted(3, "RJVB-X\n")

	for _, tok := range []byte{'R', 'J', 'V', 'B'} {
		if got := s.Ingredient[tok]; got != 3 {
			t.Errorf("ingredient %c = %d, want 3", tok, got)
		}
	}
	if s.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", s.Accepted)
	}
}

func TestRecordRefusedIncrementsCounter(t *testing.T) {
	s := New()
	s.RecordRefused()
	s.RecordRefused()
	if s.Refused != 2 {
		t.Errorf("refused = %d, want 2", s.Refused)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s := New()
	s.RecordAccepted(2, "RR")

	snap := s.Snapshot()
	s.RecordAccepted(5, "RR")

	if snap.Ingredient["R"] != 4 {
		t.Errorf("snapshot ingredient R = %d, want 4 (unaffected by later mutation)", snap.Ingredient["R"])
	}
}
