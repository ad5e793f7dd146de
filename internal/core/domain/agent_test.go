package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from AgentStatus
		to   AgentStatus
		want bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusSuspended, false},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusSuspended, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusApproved, false},
		{StatusSuspended, StatusApproved, true},
		{StatusSuspended, StatusRejected, false},
		{StatusSuspended, StatusPending, false},
		{StatusRejected, StatusApproved, true},
		{StatusRejected, StatusSuspended, false},
		{StatusRejected, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionToUnknownStatus(t *testing.T) {
	if AgentStatus("banned").CanTransitionTo(StatusApproved) {
		t.Error("expected no transitions out of an unknown status")
	}
	if StatusPending.CanTransitionTo(AgentStatus("banned")) {
		t.Error("expected no transition into an unknown status")
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []AgentStatus{StatusPending, StatusApproved, StatusRejected, StatusSuspended} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []AgentStatus{"", "banned", "Pending"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestStatusMessage(t *testing.T) {
	for _, s := range []AgentStatus{StatusPending, StatusApproved, StatusRejected, StatusSuspended} {
		if s.Message() == "" || s.Message() == "Unknown application status" {
			t.Errorf("expected a specific message for %q", s)
		}
	}
	if AgentStatus("banned").Message() != "Unknown application status" {
		t.Error("expected the unknown-status fallback message")
	}
}

func TestDocumentRefsSkipsEmpty(t *testing.T) {
	agent := &Agent{
		IDDocument:      "id-1",
		LicenseDocument: "license-1",
	}
	refs := agent.DocumentRefs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d: %v", len(refs), refs)
	}

	agent.ProfilePhoto = "photo-1"
	if got := len(agent.DocumentRefs()); got != 3 {
		t.Fatalf("expected 3 refs, got %d", got)
	}
}
