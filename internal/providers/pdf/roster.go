package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RosterData is the printable snapshot of a workspace member list.
type RosterData struct {
	WorkspaceName string
	GeneratedAt   string

	ActiveCount  int
	InvitedCount int
	TotalCount   int

	Members []RosterMember
}

type RosterMember struct {
	Name       string
	Email      string
	Role       string
	Status     string
	Department string
	LastActive string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateMemberRoster(ctx context.Context, roster RosterData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Member Roster", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(8).Add(
			text.New(roster.WorkspaceName, props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New("Generated: "+roster.GeneratedAt, props.Text{Top: 6, Size: 9}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Active: %d", roster.ActiveCount), props.Text{Size: 9, Align: align.Right}),
			text.New(fmt.Sprintf("Invited: %d", roster.InvitedCount), props.Text{Top: 4, Size: 9, Align: align.Right}),
			text.New(fmt.Sprintf("Total: %d", roster.TotalCount), props.Text{Top: 8, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(3, "Name", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Email", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Role", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Last active", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, member := range roster.Members {
		name := member.Name
		if member.Department != "" {
			name = fmt.Sprintf("%s (%s)", member.Name, member.Department)
		}
		m.AddRow(12,
			text.NewCol(3, name, props.Text{Size: 9}),
			text.NewCol(3, member.Email, props.Text{Size: 9}),
			text.NewCol(2, member.Role, props.Text{Size: 9}),
			text.NewCol(2, member.Status, props.Text{Size: 9}),
			text.NewCol(2, member.LastActive, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
