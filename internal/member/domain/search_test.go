package domain

import "testing"

func members() []MemberView {
	return []MemberView{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: "admin", Department: "Engineering", JobTitle: "Product Designer", Status: StatusActive},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: "editor", Department: "Research", Status: StatusActive},
		{Email: "pending@example.com", Role: "viewer", Status: StatusInvited},
	}
}

func TestFilterMembersByJobTitle(t *testing.T) {
	got := FilterMembers(members(), "design")
	if len(got) != 1 || got[0].Email != "ada@example.com" {
		t.Fatalf("FilterMembers(design) = %+v", got)
	}
}

func TestFilterMembersCaseInsensitive(t *testing.T) {
	lower := FilterMembers(members(), "design")
	upper := FilterMembers(members(), "DESIGN")
	if len(lower) != len(upper) {
		t.Fatalf("case sensitivity: lower=%d upper=%d", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i].Email != upper[i].Email {
			t.Fatalf("result sets differ at %d: %q vs %q", i, lower[i].Email, upper[i].Email)
		}
	}
}

func TestFilterMembersNoMatch(t *testing.T) {
	if got := FilterMembers(members(), "astronomy"); len(got) != 0 {
		t.Fatalf("FilterMembers(astronomy) = %+v, want empty", got)
	}
}

func TestFilterMembersEmptyQuery(t *testing.T) {
	if got := FilterMembers(members(), ""); len(got) != 3 {
		t.Fatalf("empty query kept %d members, want 3", len(got))
	}
	if got := FilterMembers(members(), "   "); len(got) != 3 {
		t.Fatalf("whitespace query kept %d members, want 3", len(got))
	}
}

func TestSearchTextNoSeparatorArtifacts(t *testing.T) {
	m := MemberView{FirstName: "Ann", Email: "x@y.com"}
	if got, want := SearchText(m), "annx@y.com"; got != want {
		t.Fatalf("SearchText = %q, want %q", got, want)
	}
	// A query that would only match via a separator between absent
	// fields must not match.
	if got := FilterMembers([]MemberView{m}, "ann "); len(got) != 0 {
		t.Fatalf("separator artifact matched: %+v", got)
	}
}

func TestPendingInvitationsPreservesOrder(t *testing.T) {
	list := []MemberView{
		{Email: "b@x.com", Status: StatusInvited},
		{Email: "a@x.com", Status: StatusActive},
		{Email: "c@x.com", Status: StatusInvited},
	}
	got := PendingInvitations(list)
	if len(got) != 2 || got[0].Email != "b@x.com" || got[1].Email != "c@x.com" {
		t.Fatalf("PendingInvitations = %+v", got)
	}
}

func TestCountMembers(t *testing.T) {
	list := []MemberView{
		{Status: StatusActive},
		{Status: StatusActive},
		{Status: StatusInvited},
		{Status: StatusSuspended},
	}
	counts := CountMembers(list)
	if counts.Active != 2 || counts.Invited != 1 || counts.Total != 3 {
		t.Fatalf("CountMembers = %+v", counts)
	}
}

func TestCanManage(t *testing.T) {
	if !CanManage(true, 1, 2) {
		t.Fatalf("manager should manage another member")
	}
	if CanManage(true, 1, 1) {
		t.Fatalf("self-management must be disallowed")
	}
	if CanManage(false, 1, 2) {
		t.Fatalf("non-manager must not manage")
	}
}
