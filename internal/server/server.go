package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/researchhub/workspaces/internal/audit"
	auditdomain "github.com/researchhub/workspaces/internal/audit/domain"
	"github.com/researchhub/workspaces/internal/auth"
	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	"github.com/researchhub/workspaces/internal/auth/session"
	"github.com/researchhub/workspaces/internal/authorization"
	"github.com/researchhub/workspaces/internal/clock"
	"github.com/researchhub/workspaces/internal/config"
	"github.com/researchhub/workspaces/internal/invitation"
	invitationdomain "github.com/researchhub/workspaces/internal/invitation/domain"
	"github.com/researchhub/workspaces/internal/member"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	"github.com/researchhub/workspaces/internal/observability"
	obsmiddleware "github.com/researchhub/workspaces/internal/observability/logger"
	obsmetrics "github.com/researchhub/workspaces/internal/observability/metrics"
	obstracing "github.com/researchhub/workspaces/internal/observability/tracing"
	"github.com/researchhub/workspaces/internal/providers"
	"github.com/researchhub/workspaces/internal/providers/pdf"
	"github.com/researchhub/workspaces/internal/ratelimit"
	"github.com/researchhub/workspaces/internal/workspace"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	session.Module,
	clock.Module,
	workspace.Module,
	member.Module,
	invitation.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	sessions      *session.Manager
	authsvc       authdomain.Service
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	workspaceSvc  workspacedomain.Service
	memberSvc     memberdomain.Service
	invitationSvc invitationdomain.Service
	pdfProvider   pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Sessions      *session.Manager
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	WorkspaceSvc  workspacedomain.Service
	MemberSvc     memberdomain.Service
	InvitationSvc invitationdomain.Service
	PDFProvider   pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		sessions:      p.Sessions,
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		workspaceSvc:  p.WorkspaceSvc,
		memberSvc:     p.MemberSvc,
		invitationSvc: p.InvitationSvc,
		pdfProvider:   p.PDFProvider,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.WebAuthRequired(), s.Me)

	user := auth.Group("/user", s.WebAuthRequired())
	{
		user.GET("/workspaces", s.ListUserWorkspaces)
		user.POST("/using/:workspaceId", s.UseWorkspace)
	}

	auth.POST("/invites/:code/accept", s.WebAuthRequired(), s.AcceptInvite)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/roles", s.ListRoles)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.WebAuthRequired())

	// -------- Workspaces --------
	// Membership checks happen in the service since these routes are
	// not bound to the active workspace scope.
	admin.GET("/workspaces", s.ListWorkspaces)
	admin.POST("/workspaces", s.CreateWorkspace)
	admin.GET("/workspaces/:id", s.GetWorkspace)
	admin.PATCH("/workspaces/:id", s.UpdateWorkspace)
	admin.POST("/workspaces/:id/archive", s.ArchiveWorkspace)

	scoped := admin.Group("", s.WorkspaceContext())
	{
		// -------- Members --------
		scoped.GET("/members", s.Authorize(authorization.ObjectMember, authorization.ActionMemberView), s.ListMembers)
		scoped.GET("/members/counts", s.Authorize(authorization.ObjectMember, authorization.ActionMemberView), s.MemberCounts)
		scoped.GET("/members/roster", s.Authorize(authorization.ObjectRoster, authorization.ActionRosterExport), s.ExportMemberRoster)
		scoped.PATCH("/members/:id/role", s.Authorize(authorization.ObjectMember, authorization.ActionMemberManage), s.ChangeMemberRole)
		scoped.DELETE("/members/:id", s.Authorize(authorization.ObjectMember, authorization.ActionMemberRemove), s.RemoveMember)

		// -------- Invitations --------
		scoped.GET("/invites", s.Authorize(authorization.ObjectInvitation, authorization.ActionInvitationView), s.ListInvites)
		scoped.POST("/invites", s.Authorize(authorization.ObjectInvitation, authorization.ActionInvitationSend), s.InviteMembers)
		scoped.POST("/invites/:id/revoke", s.Authorize(authorization.ObjectInvitation, authorization.ActionInvitationRevoke), s.RevokeInvite)

		// -------- Audit --------
		scoped.GET("/audit-logs", s.Authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
	}
}
