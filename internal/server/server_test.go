package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	"github.com/researchhub/workspaces/internal/auth/session"
	"github.com/researchhub/workspaces/internal/config"
	invitationdomain "github.com/researchhub/workspaces/internal/invitation/domain"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
)

type fakeAuthService struct {
	session      *authdomain.Session
	user         *authdomain.User
	authErr      error
	logoutCalls  int
	activeCalls  int
	lastActiveWS *snowflake.ID
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	_ = rawToken
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.session, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	f.logoutCalls++
	return nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, userID snowflake.ID) (*authdomain.User, error) {
	_ = ctx
	_ = userID
	return f.user, nil
}

func (f *fakeAuthService) SetActiveWorkspace(ctx context.Context, sessionID snowflake.ID, workspaceID *snowflake.ID) error {
	_ = ctx
	_ = sessionID
	f.activeCalls++
	f.lastActiveWS = workspaceID
	return nil
}

type fakeWorkspaceService struct {
	items     []workspacedomain.WorkspaceListResponseItem
	workspace *workspacedomain.WorkspaceResponse
	getErr    error
	useErr    error
}

func (f *fakeWorkspaceService) Create(ctx context.Context, userID snowflake.ID, req workspacedomain.CreateWorkspaceRequest) (*workspacedomain.WorkspaceResponse, error) {
	_ = ctx
	_ = userID
	return &workspacedomain.WorkspaceResponse{Name: req.Name, Description: req.Description}, nil
}

func (f *fakeWorkspaceService) GetByID(ctx context.Context, id string) (*workspacedomain.WorkspaceResponse, error) {
	_ = ctx
	_ = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.workspace, nil
}

func (f *fakeWorkspaceService) Update(ctx context.Context, userID snowflake.ID, id string, req workspacedomain.UpdateWorkspaceRequest) (*workspacedomain.WorkspaceResponse, error) {
	_ = ctx
	_ = userID
	_ = id
	_ = req
	return f.workspace, nil
}

func (f *fakeWorkspaceService) Archive(ctx context.Context, userID snowflake.ID, id string) error {
	_ = ctx
	_ = userID
	_ = id
	return nil
}

func (f *fakeWorkspaceService) ListByUser(ctx context.Context, userID snowflake.ID) ([]workspacedomain.WorkspaceListResponseItem, error) {
	_ = ctx
	_ = userID
	return f.items, nil
}

func (f *fakeWorkspaceService) Use(ctx context.Context, userID snowflake.ID, id string) (*workspacedomain.WorkspaceResponse, error) {
	_ = ctx
	_ = userID
	_ = id
	if f.useErr != nil {
		return nil, f.useErr
	}
	return f.workspace, nil
}

type fakeMemberService struct {
	list       *memberdomain.MemberListResponse
	changeErr  error
	removeErr  error
	lastQuery  string
	lastNewRol string
}

func (f *fakeMemberService) List(ctx context.Context, actorUserID, workspaceID snowflake.ID, req memberdomain.ListMembersRequest) (*memberdomain.MemberListResponse, error) {
	_ = ctx
	_ = actorUserID
	_ = workspaceID
	f.lastQuery = req.Query
	return f.list, nil
}

func (f *fakeMemberService) ChangeRole(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID, newRole string) (*memberdomain.MemberResponse, error) {
	_ = ctx
	_ = actorUserID
	_ = workspaceID
	_ = memberID
	f.lastNewRol = newRole
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &memberdomain.MemberResponse{ID: memberID.String(), Role: newRole}, nil
}

func (f *fakeMemberService) Remove(ctx context.Context, actorUserID, workspaceID, memberID snowflake.ID) error {
	_ = ctx
	_ = actorUserID
	_ = workspaceID
	_ = memberID
	return f.removeErr
}

func (f *fakeMemberService) Counts(ctx context.Context, workspaceID snowflake.ID) (memberdomain.MemberCounts, error) {
	_ = ctx
	_ = workspaceID
	if f.list != nil {
		return f.list.Counts, nil
	}
	return memberdomain.MemberCounts{}, nil
}

type fakeInvitationService struct {
	batchResp *invitationdomain.BatchInviteResponse
	batchErr  error
	acceptErr error
	lastBatch invitationdomain.BatchInviteRequest
	lastCode  string
}

func (f *fakeInvitationService) BatchInvite(ctx context.Context, actorUserID, workspaceID snowflake.ID, req invitationdomain.BatchInviteRequest) (*invitationdomain.BatchInviteResponse, error) {
	_ = ctx
	_ = actorUserID
	_ = workspaceID
	f.lastBatch = req
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return f.batchResp, nil
}

func (f *fakeInvitationService) List(ctx context.Context, workspaceID snowflake.ID) ([]invitationdomain.InvitationResponse, error) {
	_ = ctx
	_ = workspaceID
	return nil, nil
}

func (f *fakeInvitationService) Accept(ctx context.Context, userID snowflake.ID, code string) (*invitationdomain.AcceptResult, error) {
	_ = ctx
	_ = userID
	f.lastCode = code
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return &invitationdomain.AcceptResult{WorkspaceID: "1", MemberID: "2", Role: "editor"}, nil
}

func (f *fakeInvitationService) Revoke(ctx context.Context, actorUserID, workspaceID, invitationID snowflake.ID) error {
	_ = ctx
	_ = actorUserID
	_ = workspaceID
	_ = invitationID
	return nil
}

func (f *fakeInvitationService) ExpireStale(ctx context.Context) (int64, error) {
	_ = ctx
	return 0, nil
}

type fakeAuthzService struct {
	denyErr    error
	lastObject string
	lastAction string
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor, workspaceID, object, action string) error {
	_ = ctx
	_ = actor
	_ = workspaceID
	f.lastObject = object
	f.lastAction = action
	return f.denyErr
}

type testServer struct {
	srv        *Server
	auth       *fakeAuthService
	workspaces *fakeWorkspaceService
	members    *fakeMemberService
	invites    *fakeInvitationService
	authz      *fakeAuthzService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	wsID := snowflake.ID(9001)
	auth := &fakeAuthService{
		session: &authdomain.Session{
			ID:                snowflake.ID(501),
			UserID:            snowflake.ID(101),
			ActiveWorkspaceID: &wsID,
			ExpiresAt:         time.Now().Add(time.Hour),
		},
		user: &authdomain.User{
			ID:        snowflake.ID(101),
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Nguyen",
		},
	}
	workspaces := &fakeWorkspaceService{
		workspace: &workspacedomain.WorkspaceResponse{ID: wsID.String(), Name: "Genomics Lab"},
	}
	members := &fakeMemberService{
		list: &memberdomain.MemberListResponse{
			Members: []memberdomain.MemberResponse{},
			Pending: []memberdomain.MemberResponse{},
		},
	}
	invites := &fakeInvitationService{
		batchResp: &invitationdomain.BatchInviteResponse{Sent: 0},
	}
	authz := &fakeAuthzService{}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        r,
		cfg:           config.Config{},
		sessions:      session.NewManager(config.Config{}),
		authsvc:       auth,
		authzSvc:      authz,
		workspaceSvc:  workspaces,
		memberSvc:     members,
		invitationSvc: invites,
	}
	srv.registerAuthRoutes()
	srv.registerAPIRoutes()
	srv.registerAdminRoutes()

	return &testServer{
		srv:        srv,
		auth:       auth,
		workspaces: workspaces,
		members:    members,
		invites:    invites,
		authz:      authz,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body []byte, authed bool, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "token-abc"})
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	ts.srv.engine.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, resp.Body.String())
	}
	return out
}

func TestMeRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/auth/me", nil, false, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMeReturnsUserAndActiveWorkspace(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/auth/me", nil, true, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected user object, got %v", body)
	}
	if user["name"] != "Alice Nguyen" {
		t.Fatalf("expected display name Alice Nguyen, got %v", user["name"])
	}
	if user["email"] != "alice@example.com" {
		t.Fatalf("expected email alice@example.com, got %v", user["email"])
	}
	if body["active_workspace_id"] != "9001" {
		t.Fatalf("expected active_workspace_id 9001, got %v", body["active_workspace_id"])
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/logout", nil, true, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if ts.auth.logoutCalls != 1 {
		t.Fatalf("expected one logout call, got %d", ts.auth.logoutCalls)
	}

	cleared := false
	for _, ck := range resp.Result().Cookies() {
		if ck.Name == session.DefaultCookieName && ck.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected session cookie to be cleared")
	}
}

func TestSwitcherFiltersByNameOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.workspaces.items = []workspacedomain.WorkspaceListResponseItem{
		{ID: "1", Name: "Biology Lab", Description: "wet lab"},
		{ID: "2", Name: "Data Science", Description: "biology of data"},
		{ID: "3", Name: "Chemistry", Description: "benches"},
	}

	resp := ts.do(t, http.MethodGet, "/auth/user/workspaces?q=bio", nil, true, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := decodeBody(t, resp)
	items, ok := body["workspaces"].([]interface{})
	if !ok {
		t.Fatalf("expected workspaces array, got %v", body)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 workspace for switcher query, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["name"] != "Biology Lab" {
		t.Fatalf("expected Biology Lab, got %v", first["name"])
	}
}

func TestManagerFiltersByNameOrDescription(t *testing.T) {
	ts := newTestServer(t)
	ts.workspaces.items = []workspacedomain.WorkspaceListResponseItem{
		{ID: "1", Name: "Biology Lab", Description: "wet lab"},
		{ID: "2", Name: "Data Science", Description: "biology of data"},
		{ID: "3", Name: "Chemistry", Description: "benches"},
	}

	resp := ts.do(t, http.MethodGet, "/admin/workspaces?q=bio", nil, true, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := decodeBody(t, resp)
	items := body["workspaces"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 workspaces for manager query, got %d", len(items))
	}
}

func TestGetWorkspaceUnknownIDReturnsNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.workspaces.getErr = workspacedomain.ErrWorkspaceNotFound

	resp := ts.do(t, http.MethodGet, "/admin/workspaces/424242", nil, true, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d (body %s)", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	payload := body["error"].(map[string]interface{})
	if payload["type"] != "not_found" {
		t.Fatalf("expected error type not_found, got %v", payload["type"])
	}
}

func TestUseWorkspaceUpdatesSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/user/using/9002", nil, true, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", resp.Code, resp.Body.String())
	}
	if ts.auth.activeCalls != 1 {
		t.Fatalf("expected one SetActiveWorkspace call, got %d", ts.auth.activeCalls)
	}
	if ts.auth.lastActiveWS == nil || ts.auth.lastActiveWS.String() != "9002" {
		t.Fatalf("expected active workspace 9002, got %v", ts.auth.lastActiveWS)
	}
}

func TestUseWorkspaceRejectsBadID(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/user/using/not-a-number", nil, true, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if ts.auth.activeCalls != 0 {
		t.Fatal("expected no SetActiveWorkspace call")
	}
}

func TestListRolesOrderedWithBadges(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/roles", nil, false, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := decodeBody(t, resp)
	roles := body["roles"].([]interface{})
	if len(roles) != 4 {
		t.Fatalf("expected 4 roles, got %d", len(roles))
	}

	want := []struct {
		value string
		badge string
	}{
		{"viewer", "secondary"},
		{"editor", "success"},
		{"admin", "default"},
		{"owner", "warning"},
	}
	for i, w := range want {
		entry := roles[i].(map[string]interface{})
		if entry["value"] != w.value {
			t.Fatalf("role %d: expected value %s, got %v", i, w.value, entry["value"])
		}
		if entry["badge_variant"] != w.badge {
			t.Fatalf("role %s: expected badge %s, got %v", w.value, w.badge, entry["badge_variant"])
		}
	}
}

func TestScopedRouteRequiresWorkspace(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.session.ActiveWorkspaceID = nil

	resp := ts.do(t, http.MethodGet, "/admin/members", nil, true, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d (body %s)", resp.Code, resp.Body.String())
	}
}

func TestScopedRouteUsesWorkspaceHeader(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.session.ActiveWorkspaceID = nil

	resp := ts.do(t, http.MethodGet, "/admin/members?q=ada", nil, true, map[string]string{
		HeaderWorkspace: "9001",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", resp.Code, resp.Body.String())
	}
	if ts.members.lastQuery != "ada" {
		t.Fatalf("expected member query ada, got %q", ts.members.lastQuery)
	}
	if ts.authz.lastAction != "member.view" {
		t.Fatalf("expected member.view authorization, got %q", ts.authz.lastAction)
	}
}

func TestScopedRouteDeniedByAuthorization(t *testing.T) {
	ts := newTestServer(t)
	ts.authz.denyErr = invitationdomain.ErrForbidden

	resp := ts.do(t, http.MethodGet, "/admin/invites", nil, true, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestInviteMembersBatch(t *testing.T) {
	ts := newTestServer(t)
	ts.invites.batchResp = &invitationdomain.BatchInviteResponse{
		Sent: 1,
		Results: []invitationdomain.InviteResult{
			{Email: "bob@example.com", Status: "sent"},
			{Email: "bob@example.com", Status: "skipped", Reason: "already_invited"},
		},
	}

	payload := []byte(`{"invitations":[{"email":"bob@example.com","role":"editor"},{"email":"bob@example.com","role":"editor"}]}`)
	resp := ts.do(t, http.MethodPost, "/admin/invites", payload, true, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["sent"] != float64(1) {
		t.Fatalf("expected sent 1, got %v", body["sent"])
	}
	results := body["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(ts.invites.lastBatch.Invitations) != 2 {
		t.Fatalf("expected 2 invitations forwarded, got %d", len(ts.invites.lastBatch.Invitations))
	}
}

func TestInviteMembersRateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.invites.batchErr = invitationdomain.ErrRateLimited

	payload := []byte(`{"invitations":[{"email":"bob@example.com","role":"editor"}]}`)
	resp := ts.do(t, http.MethodPost, "/admin/invites", payload, true, nil)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}
}

func TestAcceptInviteExpiredReturnsGone(t *testing.T) {
	ts := newTestServer(t)
	ts.invites.acceptErr = invitationdomain.ErrInvitationExpired

	resp := ts.do(t, http.MethodPost, "/auth/invites/01ARZ3NDEKTSV4RRFFQ69G5FAV/accept", nil, true, nil)
	if resp.Code != http.StatusGone {
		t.Fatalf("expected status 410, got %d", resp.Code)
	}
	if ts.invites.lastCode != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("expected code forwarded, got %q", ts.invites.lastCode)
	}
}

func TestChangeRoleSelfManagementRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.members.changeErr = memberdomain.ErrSelfManagement

	payload := []byte(`{"role":"admin"}`)
	resp := ts.do(t, http.MethodPatch, "/admin/members/301/role", payload, true, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d (body %s)", resp.Code, resp.Body.String())
	}
}

func TestRemoveLastOwnerRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.members.removeErr = memberdomain.ErrLastOwner

	resp := ts.do(t, http.MethodDelete, "/admin/members/301", nil, true, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
