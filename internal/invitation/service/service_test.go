package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	authrepository "github.com/researchhub/workspaces/internal/auth/repository"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/config"
	"github.com/researchhub/workspaces/internal/invitation/domain"
	"github.com/researchhub/workspaces/internal/invitation/repository"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	memberrepository "github.com/researchhub/workspaces/internal/member/repository"
	"github.com/researchhub/workspaces/internal/observability/metrics"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
	workspacerepository "github.com/researchhub/workspaces/internal/workspace/repository"
	"github.com/researchhub/workspaces/pkg/db"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) AuditLog(_ context.Context, _ *snowflake.ID, _ string, _ *string, action string, _ string, _ *string, _ map[string]any) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) List(context.Context, auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type sentMail struct {
	to       []string
	template string
	data     map[string]interface{}
}

type fakeEmail struct {
	sent []sentMail
}

func (f *fakeEmail) Send(context.Context, []string, string, string) error { return nil }

func (f *fakeEmail) SendTemplate(_ context.Context, to []string, templateName string, data interface{}) error {
	m, _ := data.(map[string]interface{})
	f.sent = append(f.sent, sentMail{to: to, template: templateName, data: m})
	return nil
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clk   *clock.FakeClock
	audit *fakeAudit
	email *fakeEmail
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&authdomain.User{},
		&workspacedomain.Workspace{},
		&memberdomain.WorkspaceMember{},
		&domain.Invitation{},
	))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	userRepo, _ := authrepository.New(gdb)
	aud := &fakeAudit{}
	mail := &fakeEmail{}

	svc := NewService(Params{
		Log:           zap.NewNop(),
		DB:            gdb,
		Cfg:           config.Config{PublicBaseURL: "http://localhost:8080"},
		Policy:        config.NewStaticPolicyHolder(config.DefaultInvitePolicy()),
		Repo:          repository.NewRepository(gdb),
		MemberRepo:    memberrepository.NewRepository(gdb),
		UserRepo:      userRepo,
		WorkspaceRepo: workspacerepository.NewRepository(gdb),
		GenID:         genID,
		Clock:         clk,
		Email:         mail,
		Audit:         aud,
		Metrics:       m,
	})

	return &fixture{svc: svc, db: gdb, clk: clk, audit: aud, email: mail, genID: genID}
}

func (f *fixture) addWorkspace(t *testing.T, name string) snowflake.ID {
	t.Helper()
	ws := workspacedomain.Workspace{
		ID:        f.genID.Generate(),
		Name:      name,
		Slug:      name,
		Status:    "active",
		Metadata:  datatypes.JSONMap{},
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&ws).Error)
	return ws.ID
}

func (f *fixture) addUser(t *testing.T, first, last, email string) snowflake.ID {
	t.Helper()
	u := authdomain.User{ID: f.genID.Generate(), ExternalID: email, FirstName: first, LastName: last, Email: email}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) addMember(t *testing.T, wsID, userID snowflake.ID, memberRole, status string) snowflake.ID {
	t.Helper()
	m := memberdomain.WorkspaceMember{
		ID:          f.genID.Generate(),
		WorkspaceID: wsID,
		UserID:      userID,
		Role:        memberRole,
		Status:      status,
		CreatedAt:   f.clk.Now(),
		UpdatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&m).Error)
	return m.ID
}

func (f *fixture) inviteCode(t *testing.T, email string) string {
	t.Helper()
	var inv domain.Invitation
	require.NoError(t, f.db.Where("email = ?", email).First(&inv).Error)
	return inv.Code
}

func TestBatchInviteDropsInvalidRows(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	resp, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{
			{Email: "a@b.com", Role: "viewer"},
			{Email: "not-an-email", Role: "viewer"},
			{Email: "two words@x.com", Role: "editor"},
			{Email: "c@d.com", Role: "superuser"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Sent)
	require.Len(t, resp.Results, 4)
	require.Equal(t, "sent", resp.Results[0].Status)
	require.Equal(t, "skipped", resp.Results[1].Status)
	require.Equal(t, "skipped", resp.Results[2].Status)
	require.Equal(t, "skipped", resp.Results[3].Status)

	require.Len(t, f.email.sent, 1)
	require.Equal(t, []string{"a@b.com"}, f.email.sent[0].to)
	require.Equal(t, "invite_member", f.email.sent[0].template)
	require.Equal(t, "research-lab", f.email.sent[0].data["workspace_name"])
	require.Contains(t, f.audit.actions, auditdomain.ActionInvitationSent)
}

func TestBatchInviteEmptyBatch(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{})
	require.ErrorIs(t, err, domain.ErrEmptyBatch)
	require.Empty(t, f.email.sent)
}

func TestBatchInviteTooLarge(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	limit := config.DefaultInvitePolicy().MaxBatchSize
	invites := make([]domain.InviteRequest, 0, limit+1)
	for i := 0; i <= limit; i++ {
		invites = append(invites, domain.InviteRequest{
			Email: fmt.Sprintf("user%d@example.com", i),
			Role:  "viewer",
		})
	}

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{Invitations: invites})
	require.ErrorIs(t, err, domain.ErrBatchTooLarge)
	require.Empty(t, f.email.sent)
}

func TestBatchInviteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	editor := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	f.addMember(t, wsID, editor, "editor", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), editor, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "a@b.com", Role: "viewer"}},
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBatchInviteSkipsMembersAndDuplicates(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	existing := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)
	f.addMember(t, wsID, existing, "editor", memberdomain.StatusActive)

	resp, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{
			{Email: "grace@example.com", Role: "viewer"},
			{Email: "new@example.com", Role: "viewer"},
			{Email: "new@example.com", Role: "editor"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Sent)
	require.Equal(t, domain.ErrAlreadyMember.Error(), resp.Results[0].Reason)
	require.Equal(t, "sent", resp.Results[1].Status)
	require.Equal(t, domain.ErrAlreadyInvited.Error(), resp.Results[2].Reason)
}

func TestBatchInviteMarksExistingUserInvited(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	invitee := f.addUser(t, "Joan", "Clarke", "joan@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	resp, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "editor"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Sent)

	var member memberdomain.WorkspaceMember
	require.NoError(t, f.db.Where("workspace_id = ? AND user_id = ?", wsID, invitee).First(&member).Error)
	require.Equal(t, memberdomain.StatusInvited, member.Status)
	require.Equal(t, "editor", member.Role)
	require.NotNil(t, member.InvitedAt)
}

func TestAccept(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "editor"}},
	})
	require.NoError(t, err)
	code := f.inviteCode(t, "joan@example.com")

	joan := f.addUser(t, "Joan", "Clarke", "joan@example.com")

	result, err := f.svc.Accept(context.Background(), joan, code)
	require.NoError(t, err)
	require.Equal(t, wsID.String(), result.WorkspaceID)
	require.Equal(t, "editor", result.Role)
	require.Contains(t, f.audit.actions, auditdomain.ActionInvitationAccept)

	var member memberdomain.WorkspaceMember
	require.NoError(t, f.db.Where("workspace_id = ? AND user_id = ?", wsID, joan).First(&member).Error)
	require.Equal(t, memberdomain.StatusActive, member.Status)

	// A code is single use.
	_, err = f.svc.Accept(context.Background(), joan, code)
	require.ErrorIs(t, err, domain.ErrInvitationAccepted)
}

func TestAcceptRejectsWrongUserAndBadCode(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "viewer"}},
	})
	require.NoError(t, err)
	code := f.inviteCode(t, "joan@example.com")

	other := f.addUser(t, "Alan", "Turing", "alan@example.com")
	_, err = f.svc.Accept(context.Background(), other, code)
	require.ErrorIs(t, err, domain.ErrEmailMismatch)

	_, err = f.svc.Accept(context.Background(), other, "no-such-code")
	require.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestAcceptExpired(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "viewer"}},
	})
	require.NoError(t, err)
	code := f.inviteCode(t, "joan@example.com")

	joan := f.addUser(t, "Joan", "Clarke", "joan@example.com")
	f.clk.Advance(15 * 24 * time.Hour)

	_, err = f.svc.Accept(context.Background(), joan, code)
	require.ErrorIs(t, err, domain.ErrInvitationExpired)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	invitee := f.addUser(t, "Joan", "Clarke", "joan@example.com")
	viewer := f.addUser(t, "Alan", "Turing", "alan@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)
	f.addMember(t, wsID, viewer, "viewer", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "viewer"}},
	})
	require.NoError(t, err)

	var inv domain.Invitation
	require.NoError(t, f.db.Where("email = ?", "joan@example.com").First(&inv).Error)

	require.ErrorIs(t, f.svc.Revoke(context.Background(), viewer, wsID, inv.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Revoke(context.Background(), admin, wsID, inv.ID))
	require.Contains(t, f.audit.actions, auditdomain.ActionInvitationRevoked)

	// The provisional member row is dropped with the invitation.
	var member memberdomain.WorkspaceMember
	require.NoError(t, f.db.Where("workspace_id = ? AND user_id = ?", wsID, invitee).First(&member).Error)
	require.Equal(t, memberdomain.StatusRemoved, member.Status)

	require.ErrorIs(t, f.svc.Revoke(context.Background(), admin, wsID, inv.ID), domain.ErrInvitationRevoked)
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{
			{Email: "joan@example.com", Role: "editor"},
			{Email: "alan@example.com", Role: "admin"},
		},
	})
	require.NoError(t, err)

	list, err := f.svc.List(context.Background(), wsID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byEmail := map[string]domain.InvitationResponse{}
	for _, item := range list {
		byEmail[item.Email] = item
	}
	require.Equal(t, "success", byEmail["joan@example.com"].RoleBadge)
	require.Equal(t, "default", byEmail["alan@example.com"].RoleBadge)
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)
	wsID := f.addWorkspace(t, "research-lab")
	admin := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	f.addMember(t, wsID, admin, "admin", memberdomain.StatusActive)

	_, err := f.svc.BatchInvite(context.Background(), admin, wsID, domain.BatchInviteRequest{
		Invitations: []domain.InviteRequest{{Email: "joan@example.com", Role: "viewer"}},
	})
	require.NoError(t, err)

	expired, err := f.svc.ExpireStale(context.Background())
	require.NoError(t, err)
	require.Zero(t, expired)

	f.clk.Advance(15 * 24 * time.Hour)
	expired, err = f.svc.ExpireStale(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	list, err := f.svc.List(context.Background(), wsID)
	require.NoError(t, err)
	require.Empty(t, list)
}
