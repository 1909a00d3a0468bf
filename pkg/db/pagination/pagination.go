package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10" validate:"gte=1,lte=250"` // Min 1, Max 250
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// BuildCursorPageInfo derives page info from an over-fetched result
// set (limit+1 rows). The next-page token points at the last row of
// the returned page.
func BuildCursorPageInfo[T any](items []T, pageSize int32, encode func(T) string) *PageInfo {
	if pageSize <= 0 || len(items) <= int(pageSize) {
		return &PageInfo{}
	}
	return &PageInfo{
		NextPageToken: encode(items[pageSize-1]),
		HasMore:       true,
	}
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
