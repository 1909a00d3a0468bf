// Package draft implements the transient multi-invite form state: an
// ordered list of email+role rows with per-row validation and a
// single-submission guard.
package draft

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	invitationdomain "github.com/researchhub/workspaces/internal/invitation/domain"
	"github.com/researchhub/workspaces/internal/role"
)

// RowState is the visual state of a single draft row.
type RowState string

const (
	RowEmpty   RowState = "empty"
	RowInvalid RowState = "invalid"
	RowValid   RowState = "valid"
)

// Row is one entry in the invite form. The ID is a form-local
// correlation key, never a persisted identifier.
type Row struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Role    role.Role `json:"role"`
	Message string    `json:"message,omitempty"`
	IsValid bool      `json:"is_valid"`
}

// State derives the row's visual state from its fields.
func (r Row) State() RowState {
	switch {
	case r.Email == "":
		return RowEmpty
	case !r.IsValid:
		return RowInvalid
	default:
		return RowValid
	}
}

// Submitter delivers an assembled batch. Implementations decide
// transport, persistence and failure reporting.
type Submitter interface {
	Submit(ctx context.Context, batch []invitationdomain.InviteRequest) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, batch []invitationdomain.InviteRequest) error

func (f SubmitterFunc) Submit(ctx context.Context, batch []invitationdomain.InviteRequest) error {
	return f(ctx, batch)
}

// List is the invite form state machine. It always holds at least one
// row and allows only one in-flight submission at a time.
type List struct {
	mu         sync.Mutex
	rows       []Row
	submitting bool
	newID      func() string
}

// NewList returns a List holding a single empty row.
func NewList() *List {
	l := &List{newID: uuid.NewString}
	l.rows = []Row{l.blankRow()}
	return l
}

func (l *List) blankRow() Row {
	return Row{
		ID:   l.newID(),
		Role: role.Viewer,
	}
}

// Rows returns a copy of the current rows in order.
func (l *List) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Submitting reports whether a submission is in flight.
func (l *List) Submitting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submitting
}

// AddRow appends a fresh empty row and returns its correlation ID.
func (l *List) AddRow() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return ""
	}
	row := l.blankRow()
	l.rows = append(l.rows, row)
	return row.ID
}

// UpdateEmail sets the email of the row matching id and recomputes its
// validity. An unmatched id is a no-op.
func (l *List) UpdateEmail(id, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return
	}
	for i := range l.rows {
		if l.rows[i].ID == id {
			l.rows[i].Email = email
			l.rows[i].IsValid = invitationdomain.IsValidEmail(email)
			return
		}
	}
}

// UpdateRole sets the role of the row matching id. An unmatched id or
// unknown role is a no-op.
func (l *List) UpdateRole(id string, r role.Role) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting || !r.IsValid() {
		return
	}
	for i := range l.rows {
		if l.rows[i].ID == id {
			l.rows[i].Role = r
			return
		}
	}
}

// UpdateMessage sets the optional message of the row matching id.
func (l *List) UpdateMessage(id, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting {
		return
	}
	for i := range l.rows {
		if l.rows[i].ID == id {
			l.rows[i].Message = message
			return
		}
	}
}

// RemoveRow deletes the row matching id unless it is the only row
// left. The form must always keep one editable row.
func (l *List) RemoveRow(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitting || len(l.rows) <= 1 {
		return
	}
	for i := range l.rows {
		if l.rows[i].ID == id {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return
		}
	}
}

// ValidCount returns how many rows would make it into a batch.
func (l *List) ValidCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(assemble(l.rows))
}

// Batch assembles the submission payload from the current rows. Rows
// with empty or invalid emails are excluded.
func (l *List) Batch() []invitationdomain.InviteRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return assemble(l.rows)
}

func assemble(rows []Row) []invitationdomain.InviteRequest {
	batch := make([]invitationdomain.InviteRequest, 0, len(rows))
	for _, row := range rows {
		if !row.IsValid || strings.TrimSpace(row.Email) == "" {
			continue
		}
		batch = append(batch, invitationdomain.InviteRequest{
			Email:   row.Email,
			Role:    row.Role.String(),
			Message: row.Message,
		})
	}
	return batch
}

// Submit assembles the batch and delivers it through the submitter.
// An empty batch is refused without calling the submitter. While a
// submission is in flight further Submit calls are ignored. On success
// the form resets to a single empty row; on failure the rows are kept
// so no input is lost.
func (l *List) Submit(ctx context.Context, submitter Submitter) error {
	l.mu.Lock()
	if l.submitting {
		l.mu.Unlock()
		return nil
	}
	batch := assemble(l.rows)
	if len(batch) == 0 {
		l.mu.Unlock()
		return nil
	}
	l.submitting = true
	l.mu.Unlock()

	err := submitter.Submit(ctx, batch)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitting = false
	if err != nil {
		return err
	}
	l.rows = []Row{l.blankRow()}
	return nil
}
