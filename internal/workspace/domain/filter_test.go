package domain

import "testing"

func sample() []WorkspaceListResponseItem {
	return []WorkspaceListResponseItem{
		{Name: "Oncology Study", Description: "Phase II trial workspace"},
		{Name: "Cardiology", Description: "Heart failure cohort"},
		{Name: "Internal QA", Description: "oncology data checks"},
	}
}

func TestFilterForSwitcher(t *testing.T) {
	got := FilterForSwitcher(sample(), "onco")
	if len(got) != 1 || got[0].Name != "Oncology Study" {
		t.Fatalf("FilterForSwitcher(onco) = %+v", got)
	}

	if got := FilterForSwitcher(sample(), "ONCO"); len(got) != 1 {
		t.Fatalf("switcher filter must be case-insensitive, got %d items", len(got))
	}

	if got := FilterForSwitcher(sample(), ""); len(got) != 3 {
		t.Fatalf("empty query must keep all items, got %d", len(got))
	}

	if got := FilterForSwitcher(sample(), "zzz"); len(got) != 0 {
		t.Fatalf("no-match query must return empty, got %d", len(got))
	}
}

func TestFilterForManagerMatchesDescription(t *testing.T) {
	got := FilterForManager(sample(), "oncology")
	if len(got) != 2 {
		t.Fatalf("FilterForManager(oncology) = %d items, want 2 (name and description matches)", len(got))
	}

	got = FilterForManager(sample(), "cohort")
	if len(got) != 1 || got[0].Name != "Cardiology" {
		t.Fatalf("FilterForManager(cohort) = %+v", got)
	}
}
