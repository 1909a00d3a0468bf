package domain

import "strings"

// FilterForSwitcher narrows items to those whose name contains query,
// case-insensitively. An empty query keeps every item.
func FilterForSwitcher(items []WorkspaceListResponseItem, query string) []WorkspaceListResponseItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]WorkspaceListResponseItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			out = append(out, item)
		}
	}
	return out
}

// FilterForManager matches query against name and description.
func FilterForManager(items []WorkspaceListResponseItem, query string) []WorkspaceListResponseItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]WorkspaceListResponseItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Description), q) {
			out = append(out, item)
		}
	}
	return out
}
