package persistence

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFinishRun(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateRun("run-1", "HotFullPower"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := s.FinishRun("run-1", "completed"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
}

func TestRecordAndQuerySnapshots(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateRun("run-1", "HotFullPower"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	for i := 0; i < 3; i++ {
		err := s.RecordSnapshot(Snapshot{
			RunID:        "run-1",
			SimTimeHr:    float64(i),
			PressurePsia: 2250,
			TAvgF:        588.5,
			PowerFrac:    1.0,
			PZRLevelPct:  60,
			Regime:       "TwoPhase",
		})
		if err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}
	snaps, err := s.QuerySnapshots("run-1")
	if err != nil {
		t.Fatalf("QuerySnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	if snaps[0].SimTimeHr != 0 || snaps[2].SimTimeHr != 2 {
		t.Fatalf("expected snapshots ordered by sim time, got %+v", snaps)
	}
}

func TestRecordAndQueryEvents(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateRun("run-1", "HotFullPower"); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := s.RecordEvent(EventRow{ID: "e1", RunID: "run-1", SimTimeHr: 1.0, Kind: "alarm.set", Message: "high pressure"}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	events, err := s.QueryEvents("run-1")
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != "e1" {
		t.Fatalf("expected 1 event with id e1, got %+v", events)
	}
}
