// Package role defines the workspace role model shared by every
// membership and invitation flow.
package role

// Role is a workspace role. Privilege increases from Viewer to Owner.
type Role string

const (
	Viewer Role = "viewer"
	Editor Role = "editor"
	Admin  Role = "admin"
	Owner  Role = "owner"
)

// All lists the known roles in ascending privilege order.
var All = []Role{Viewer, Editor, Admin, Owner}

var levels = map[Role]int{
	Viewer: 0,
	Editor: 1,
	Admin:  2,
	Owner:  3,
}

// Parse returns the Role matching s and whether s named a known role.
func Parse(s string) (Role, bool) {
	r := Role(s)
	if _, ok := levels[r]; ok {
		return r, true
	}
	return "", false
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := levels[r]
	return ok
}

// Level returns the privilege rank of r. Unknown roles rank below Viewer.
func (r Role) Level() int {
	if lvl, ok := levels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether r carries privilege equal to or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// Compare orders roles by privilege. It returns a negative value when
// r is below other, zero when equal, positive when above.
func (r Role) Compare(other Role) int {
	return r.Level() - other.Level()
}

func (r Role) String() string { return string(r) }

// Display carries the rendering attributes of a role.
type Display struct {
	Icon         string `json:"icon"`
	BadgeVariant string `json:"badge_variant"`
	Label        string `json:"label"`
	Description  string `json:"description"`
}

var displays = map[Role]Display{
	Owner: {
		Icon:         "crown",
		BadgeVariant: "warning",
		Label:        "Owner",
		Description:  "Full access including billing and workspace deletion",
	},
	Admin: {
		Icon:         "shield",
		BadgeVariant: "default",
		Label:        "Admin",
		Description:  "Manage members, invitations and workspace settings",
	},
	Editor: {
		Icon:         "pencil",
		BadgeVariant: "success",
		Label:        "Editor",
		Description:  "Create and edit workspace content",
	},
	Viewer: {
		Icon:         "eye",
		BadgeVariant: "secondary",
		Label:        "Viewer",
		Description:  "Read-only access to workspace content",
	},
}

// unknownDisplay is the neutral fallback for stale or unrecognized
// role values coming from external data.
var unknownDisplay = Display{
	Icon:         "user",
	BadgeVariant: "secondary",
	Label:        "Member",
	Description:  "Unrecognized role",
}

// ToDisplay maps any role string to its display attributes. Unknown
// values fall back to a neutral display rather than failing.
func ToDisplay(r Role) Display {
	if d, ok := displays[r]; ok {
		return d
	}
	return unknownDisplay
}
