package seed

import (
	"testing"

	authdomain "github.com/researchhub/workspaces/internal/auth/domain"
	memberdomain "github.com/researchhub/workspaces/internal/member/domain"
	workspacedomain "github.com/researchhub/workspaces/internal/workspace/domain"
	"github.com/researchhub/workspaces/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultWorkspaceAndOwnerIsIdempotent(t *testing.T) {
	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&authdomain.User{},
		&workspacedomain.Workspace{},
		&memberdomain.WorkspaceMember{},
	))

	require.NoError(t, EnsureDefaultWorkspaceAndOwner(gdb, "My Workspace", "owner@researchhub.local"))
	require.NoError(t, EnsureDefaultWorkspaceAndOwner(gdb, "My Workspace", "owner@researchhub.local"))

	var workspaces int64
	require.NoError(t, gdb.Model(&workspacedomain.Workspace{}).Count(&workspaces).Error)
	require.EqualValues(t, 1, workspaces)

	var ws workspacedomain.Workspace
	require.NoError(t, gdb.Where("is_default = ?", true).First(&ws).Error)
	require.Equal(t, "my-workspace", ws.Slug)

	var member memberdomain.WorkspaceMember
	require.NoError(t, gdb.Where("workspace_id = ?", ws.ID).First(&member).Error)
	require.Equal(t, "owner", member.Role)
	require.Equal(t, memberdomain.StatusActive, member.Status)
}
