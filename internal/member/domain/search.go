package domain

import "strings"

// SearchText concatenates the searchable fields of m. Absent fields
// contribute nothing, not even a separator, so a query can never match
// an artifact of missing data.
func SearchText(m MemberView) string {
	var b strings.Builder
	for _, part := range []string{m.FirstName, m.LastName, m.Email, m.Role, m.Department, m.JobTitle} {
		if part != "" {
			b.WriteString(strings.ToLower(part))
		}
	}
	return b.String()
}

// FilterMembers returns the members whose searchable text contains
// query, case-insensitively. An empty query keeps every member. Input
// order is preserved.
func FilterMembers(members []MemberView, query string) []MemberView {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return members
	}
	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		if strings.Contains(SearchText(m), q) {
			out = append(out, m)
		}
	}
	return out
}

// PendingInvitations returns members still in the invited status, in
// input order.
func PendingInvitations(members []MemberView) []MemberView {
	out := make([]MemberView, 0)
	for _, m := range members {
		if m.Status == StatusInvited {
			out = append(out, m)
		}
	}
	return out
}

// CountMembers derives status counts over the full member list. Total
// covers active and invited rows, matching the workspace list's member
// count; suspended members are excluded from both.
func CountMembers(members []MemberView) MemberCounts {
	var counts MemberCounts
	for _, m := range members {
		switch m.Status {
		case StatusActive:
			counts.Active++
		case StatusInvited:
			counts.Invited++
		}
	}
	counts.Total = counts.Active + counts.Invited
	return counts
}

// CanManage reports whether the viewer may manage or remove the given
// member row. Self-management through the member list is disallowed,
// regardless of privilege.
func CanManage(canManageMembers bool, viewerUserID, memberUserID int64) bool {
	return canManageMembers && viewerUserID != memberUserID
}
