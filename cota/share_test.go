package cota

import "testing"

func TestJoinLeaveCounts(t *testing.T) {
	s := NewShare(alice.ID)

	s.AddParticipant(bruno)
	s.AddParticipant(bruno)
	s.AddParticipant(bruno)
	if got := s.Going[bruno.ID].Count; got != 3 {
		t.Fatalf("count after 3 joins = %d, want 3", got)
	}

	s.RemoveParticipant(bruno.ID)
	if got := s.Going[bruno.ID].Count; got != 2 {
		t.Fatalf("count after leave = %d, want 2", got)
	}

	s.RemoveParticipant(bruno.ID)
	s.RemoveParticipant(bruno.ID)
	if _, ok := s.Going[bruno.ID]; ok {
		t.Fatal("participant should be removed at count 0")
	}

	// Leaving when absent stays a no-op.
	s.RemoveParticipant(bruno.ID)
	s.RemoveParticipant(carla.ID)
	if len(s.Going) != 0 {
		t.Fatalf("roster should stay empty, got %d entries", len(s.Going))
	}
}

func TestSetValueFlexibleParsing(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"12,50", 12.5, true},
		{"12.50", 12.5, true},
		{"50", 50, true},
		{" R$ 30 ", 30, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"1,2,3", 0, false},
	}
	for _, tc := range cases {
		s := NewShare(alice.ID)
		s.SetValue(tc.raw)
		if tc.ok {
			if s.Value == nil || *s.Value != tc.want {
				t.Fatalf("SetValue(%q) = %v, want %v", tc.raw, s.Value, tc.want)
			}
		} else if s.Value != nil {
			t.Fatalf("SetValue(%q) = %v, want undetermined", tc.raw, *s.Value)
		}
	}
}

func TestDerivedValues(t *testing.T) {
	pooled := NewShare(alice.ID)
	pooled.Type = Pooled
	pooled.SetValue("10")
	pooled.AddParticipant(bruno)
	pooled.AddParticipant(bruno)
	pooled.AddParticipant(carla)

	if total, ok := pooled.TotalValue(); !ok || total != 30 {
		t.Fatalf("pooled total = %v (%v), want 30", total, ok)
	}
	if per, ok := pooled.PerPerson(); !ok || per != 10 {
		t.Fatalf("pooled per-person = %v (%v), want 10", per, ok)
	}

	goal := NewShare(alice.ID)
	goal.Type = GoalBased
	goal.SetValue("90")
	goal.AddParticipant(bruno)
	goal.AddParticipant(carla)
	goal.AddParticipant(carla)

	if total, ok := goal.TotalValue(); !ok || total != 90 {
		t.Fatalf("goal total = %v (%v), want 90", total, ok)
	}
	if per, ok := goal.PerPerson(); !ok || per != 30 {
		t.Fatalf("goal per-person = %v (%v), want 30", per, ok)
	}

	empty := NewShare(alice.ID)
	empty.Type = GoalBased
	empty.SetValue("90")
	if _, ok := empty.PerPerson(); ok {
		t.Fatal("per-person should be undefined with no participants")
	}

	unset := NewShare(alice.ID)
	unset.AddParticipant(bruno)
	if _, ok := unset.TotalValue(); ok {
		t.Fatal("total should be undefined without a value")
	}
}

func TestSummaryLine(t *testing.T) {
	s := NewShare(alice.ID)
	name := "Churrasco"
	s.Name = &name
	s.AddParticipant(bruno)
	s.AddParticipant(bruno)

	if got := s.SummaryLine(); got != "(2) Churrasco" {
		t.Fatalf("summary without value = %q", got)
	}

	s.SetValue("25,5")
	if got := s.SummaryLine(); got != "(2) Churrasco - R$ 25.50" {
		t.Fatalf("summary with value = %q", got)
	}
}

func TestParticipantDisplayName(t *testing.T) {
	p := &Participant{FirstName: "Alice", LastName: "Almeida"}
	if got := p.DisplayName(); got != "Alice A." {
		t.Fatalf("display name = %q", got)
	}
	solo := &Participant{FirstName: "Cher"}
	if got := solo.DisplayName(); got != "Cher" {
		t.Fatalf("display name without last name = %q", got)
	}
}
