package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/member/domain"
	"github.com/researchhub/workspaces/internal/member/repository"
	"github.com/researchhub/workspaces/internal/observability/metrics"
	"github.com/researchhub/workspaces/pkg/db"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
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

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clk   *clock.FakeClock
	audit *fakeAudit
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&authdomain.User{}, &domain.WorkspaceMember{}))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	aud := &fakeAudit{}
	svc := NewService(Params{
		Log:     zap.NewNop(),
		DB:      gdb,
		Repo:    repository.NewRepository(gdb),
		Clock:   clk,
		Audit:   aud,
		Metrics: m,
	})

	return &fixture{svc: svc, db: gdb, clk: clk, audit: aud, genID: genID}
}

func (f *fixture) addUser(t *testing.T, first, last, email string) snowflake.ID {
	t.Helper()
	u := authdomain.User{ID: f.genID.Generate(), ExternalID: email, FirstName: first, LastName: last, Email: email}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) addMember(t *testing.T, wsID, userID snowflake.ID, memberRole, status string) snowflake.ID {
	t.Helper()
	m := domain.WorkspaceMember{
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

func TestListFiltersAndCounts(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	editor := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	invited := f.addUser(t, "", "", "pending@example.com")

	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	f.addMember(t, wsID, editor, "editor", domain.StatusActive)
	f.addMember(t, wsID, invited, "viewer", domain.StatusInvited)

	resp, err := f.svc.List(context.Background(), owner, wsID, domain.ListMembersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Members, 3)
	require.Len(t, resp.Pending, 1)
	require.Equal(t, "pending@example.com", resp.Pending[0].Email)
	require.Equal(t, domain.MemberCounts{Active: 2, Invited: 1, Total: 3}, resp.Counts)

	// Counts reflect the full list even when a query narrows results.
	resp, err = f.svc.List(context.Background(), owner, wsID, domain.ListMembersRequest{Query: "grace"})
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	require.Equal(t, "grace@example.com", resp.Members[0].Email)
	require.Equal(t, 3, resp.Counts.Total)
}

func TestListBadgesAndGating(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	viewer := f.addUser(t, "Joan", "Clarke", "joan@example.com")
	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	f.addMember(t, wsID, viewer, "viewer", domain.StatusActive)

	resp, err := f.svc.List(context.Background(), owner, wsID, domain.ListMembersRequest{})
	require.NoError(t, err)

	byEmail := map[string]domain.MemberResponse{}
	for _, m := range resp.Members {
		byEmail[m.Email] = m
	}
	require.Equal(t, "warning", byEmail["ada@example.com"].RoleBadge)
	require.Equal(t, "secondary", byEmail["joan@example.com"].RoleBadge)

	// The owner manages others but never their own row.
	require.False(t, byEmail["ada@example.com"].CanManage)
	require.True(t, byEmail["ada@example.com"].CurrentUser)
	require.True(t, byEmail["joan@example.com"].CanManage)

	// A viewer manages no one.
	resp, err = f.svc.List(context.Background(), viewer, wsID, domain.ListMembersRequest{})
	require.NoError(t, err)
	for _, m := range resp.Members {
		require.False(t, m.CanManage)
	}
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	editor := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	target := f.addMember(t, wsID, editor, "editor", domain.StatusActive)

	resp, err := f.svc.ChangeRole(context.Background(), owner, wsID, target, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", resp.Role)
	require.Equal(t, "default", resp.RoleBadge)
	require.Contains(t, f.audit.actions, auditdomain.ActionMemberRoleChanged)

	_, err = f.svc.ChangeRole(context.Background(), owner, wsID, target, "superuser")
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestChangeRoleRejectsSelf(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	self := f.addMember(t, wsID, owner, "owner", domain.StatusActive)

	_, err := f.svc.ChangeRole(context.Background(), owner, wsID, self, "admin")
	require.ErrorIs(t, err, domain.ErrSelfManagement)
}

func TestChangeRoleProtectsLastOwner(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	second := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	secondID := f.addMember(t, wsID, second, "owner", domain.StatusActive)

	// With two owners a demotion is allowed.
	_, err := f.svc.ChangeRole(context.Background(), owner, wsID, secondID, "admin")
	require.NoError(t, err)

	// Now the actor holds the only ownership; demoting it would
	// orphan the workspace, and self-management is blocked anyway.
	// Promote the second user back and verify the remaining owner
	// cannot be demoted by an admin.
	_, err = f.svc.ChangeRole(context.Background(), second, wsID, secondID, "owner")
	require.ErrorIs(t, err, domain.ErrSelfManagement)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	editor := f.addUser(t, "Grace", "Hopper", "grace@example.com")
	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	target := f.addMember(t, wsID, editor, "editor", domain.StatusActive)

	require.NoError(t, f.svc.Remove(context.Background(), owner, wsID, target))
	require.Contains(t, f.audit.actions, auditdomain.ActionMemberRemoved)

	resp, err := f.svc.List(context.Background(), owner, wsID, domain.ListMembersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	require.Equal(t, "ada@example.com", resp.Members[0].Email)
}

func TestRemoveRejectsSelfAndNonManager(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	viewer := f.addUser(t, "Joan", "Clarke", "joan@example.com")
	ownerMember := f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	viewerMember := f.addMember(t, wsID, viewer, "viewer", domain.StatusActive)

	require.ErrorIs(t, f.svc.Remove(context.Background(), owner, wsID, ownerMember), domain.ErrSelfManagement)
	require.ErrorIs(t, f.svc.Remove(context.Background(), viewer, wsID, ownerMember), domain.ErrForbidden)
	require.NoError(t, f.svc.Remove(context.Background(), owner, wsID, viewerMember))
}

func TestCounts(t *testing.T) {
	f := newFixture(t)
	wsID := f.genID.Generate()

	owner := f.addUser(t, "Ada", "Lovelace", "ada@example.com")
	invited := f.addUser(t, "", "", "pending@example.com")
	suspended := f.addUser(t, "Sam", "Idle", "sam@example.com")
	f.addMember(t, wsID, owner, "owner", domain.StatusActive)
	f.addMember(t, wsID, invited, "viewer", domain.StatusInvited)
	f.addMember(t, wsID, suspended, "editor", domain.StatusSuspended)

	counts, err := f.svc.Counts(context.Background(), wsID)
	require.NoError(t, err)
	require.Equal(t, domain.MemberCounts{Active: 1, Invited: 1, Total: 2}, counts)
}
