// Package rbac holds the static role registry: display names, dashboard
// landing routes and permission sets for every portal role.
package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies a fixed category of portal user.
type Role string

const (
	RoleSuperAdmin        Role = "SUPER_ADMIN"
	RoleAdmin             Role = "ADMIN"
	RoleTechnicalHead     Role = "TECHNICAL_HEAD"
	RoleFaculty           Role = "FACULTY"
	RoleStudent           Role = "STUDENT"
	RoleParent            Role = "PARENT"
	RoleCoordinator       Role = "COORDINATOR"
	RoleOperationsManager Role = "OPERATIONS_MANAGER"
	RoleHR                Role = "HR"
)

// Permission is an opaque capability token granted to roles.
type Permission string

const (
	PermManageUsers        Permission = "manage_users"
	PermManageRoles        Permission = "manage_roles"
	PermManageSettings     Permission = "manage_settings"
	PermViewAllDashboards  Permission = "view_all_dashboards"
	PermManageContent      Permission = "manage_content"
	PermManageBlogs        Permission = "manage_blogs"
	PermManageVideos       Permission = "manage_videos"
	PermManageTestimonials Permission = "manage_testimonials"
	PermManageBanners      Permission = "manage_banners"
	PermManageTeam         Permission = "manage_team"
	PermManageCourses      Permission = "manage_courses"
	PermViewCourses        Permission = "view_courses"
	PermViewReports        Permission = "view_reports"
	PermManageTechnical    Permission = "manage_technical"
	PermViewStudents       Permission = "view_students"
	PermManageAttendance   Permission = "manage_attendance"
	PermManageAssignments  Permission = "manage_assignments"
	PermViewResults        Permission = "view_results"
	PermViewOwnProgress    Permission = "view_own_progress"
	PermViewChildProgress  Permission = "view_child_progress"
	PermManageSchedule     Permission = "manage_schedule"
	PermManageBatches      Permission = "manage_batches"
	PermManageOperations   Permission = "manage_operations"
	PermManageStaff        Permission = "manage_staff"
	PermViewStaff          Permission = "view_staff"
	PermManagePayroll      Permission = "manage_payroll"
)

// DefaultRoute is where unknown roles land when the registry is permissive.
const DefaultRoute = "/"

// ErrUnknownRole is returned by strict lookups for roles missing from the registry.
var ErrUnknownRole = errors.New("unknown role")

// Entry is the registry record for one role.
type Entry struct {
	Role        Role         `json:"role"`
	Name        string       `json:"name"`
	Dashboard   string       `json:"dashboard"`
	Permissions []Permission `json:"permissions"`
}

func (e Entry) clone() Entry {
	e.Permissions = append([]Permission(nil), e.Permissions...)
	return e
}

var defaultEntries = []Entry{
	{
		Role:      RoleSuperAdmin,
		Name:      "Super Admin",
		Dashboard: "/dashboard/super-admin",
		Permissions: []Permission{
			PermManageUsers, PermManageRoles, PermManageSettings, PermViewAllDashboards,
			PermManageContent, PermManageBlogs, PermManageVideos, PermManageTestimonials,
			PermManageBanners, PermManageTeam, PermManageCourses, PermViewCourses,
			PermViewReports, PermManageTechnical, PermViewStudents, PermManageStaff,
			PermViewStaff, PermManagePayroll, PermManageOperations,
		},
	},
	{
		Role:      RoleAdmin,
		Name:      "Admin",
		Dashboard: "/dashboard/admin",
		Permissions: []Permission{
			PermManageUsers, PermManageContent, PermManageBlogs, PermManageVideos,
			PermManageTestimonials, PermManageBanners, PermManageTeam, PermManageCourses,
			PermViewCourses, PermViewReports, PermViewStudents, PermViewStaff,
		},
	},
	{
		Role:      RoleTechnicalHead,
		Name:      "Technical Head",
		Dashboard: "/dashboard/technical-head",
		Permissions: []Permission{
			PermManageTechnical, PermManageSettings, PermManageContent, PermManageVideos,
			PermViewReports, PermViewCourses,
		},
	},
	{
		Role:      RoleFaculty,
		Name:      "Faculty",
		Dashboard: "/dashboard/faculty",
		Permissions: []Permission{
			PermViewCourses, PermViewStudents, PermManageAttendance, PermManageAssignments,
			PermViewResults, PermManageSchedule,
		},
	},
	{
		Role:      RoleStudent,
		Name:      "Student",
		Dashboard: "/dashboard/student",
		Permissions: []Permission{
			PermViewCourses, PermViewOwnProgress, PermViewResults,
		},
	},
	{
		Role:      RoleParent,
		Name:      "Parent",
		Dashboard: "/dashboard/parent",
		Permissions: []Permission{
			PermViewChildProgress, PermViewResults, PermViewCourses,
		},
	},
	{
		Role:      RoleCoordinator,
		Name:      "Coordinator",
		Dashboard: "/dashboard/coordinator",
		Permissions: []Permission{
			PermViewStudents, PermManageSchedule, PermManageBatches, PermManageAttendance,
			PermViewCourses, PermViewReports,
		},
	},
	{
		Role:      RoleOperationsManager,
		Name:      "Operations Manager",
		Dashboard: "/dashboard/operations-manager",
		Permissions: []Permission{
			PermManageOperations, PermManageBatches, PermViewReports, PermViewStaff,
			PermViewStudents, PermViewCourses,
		},
	},
	{
		Role:      RoleHR,
		Name:      "HR",
		Dashboard: "/dashboard/hr",
		Permissions: []Permission{
			PermManageStaff, PermViewStaff, PermManagePayroll, PermViewReports,
		},
	},
}

var roleAliases = map[string]Role{
	"TEACHER":     RoleFaculty,
	"SUPERADMIN":  RoleSuperAdmin,
	"OPS_MANAGER": RoleOperationsManager,
}

// Registry is an immutable lookup table from Role to Entry.
type Registry struct {
	order   []Role
	entries map[Role]Entry
	perms   map[Role]map[Permission]struct{}
	strict  bool
}

// Option tweaks registry construction.
type Option func(*Registry)

// WithStrict makes ResolveDashboard fail for roles without an entry.
func WithStrict(strict bool) Option {
	return func(r *Registry) { r.strict = strict }
}

// NewRegistry builds a registry from entries. It rejects duplicate roles and
// duplicate or empty dashboard routes.
func NewRegistry(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries: make(map[Role]Entry, len(entries)),
		perms:   make(map[Role]map[Permission]struct{}, len(entries)),
	}
	routes := make(map[string]Role, len(entries))
	for _, e := range entries {
		if e.Role == "" {
			return nil, errors.New("rbac: entry without role")
		}
		if _, dup := r.entries[e.Role]; dup {
			return nil, fmt.Errorf("rbac: duplicate entry for %s", e.Role)
		}
		if e.Dashboard == "" {
			return nil, fmt.Errorf("rbac: %s has no dashboard route", e.Role)
		}
		if other, dup := routes[e.Dashboard]; dup {
			return nil, fmt.Errorf("rbac: %s and %s share dashboard %s", other, e.Role, e.Dashboard)
		}
		routes[e.Dashboard] = e.Role
		set := make(map[Permission]struct{}, len(e.Permissions))
		for _, p := range e.Permissions {
			set[p] = struct{}{}
		}
		r.order = append(r.order, e.Role)
		r.entries[e.Role] = e.clone()
		r.perms[e.Role] = set
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Default returns the Centum Academy registry.
func Default(opts ...Option) *Registry {
	r, err := NewRegistry(defaultEntries, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Strict reports whether unknown roles are treated as configuration errors.
func (r *Registry) Strict() bool { return r.strict }

// Roles lists every registered role in registration order.
func (r *Registry) Roles() []Role {
	return append([]Role(nil), r.order...)
}

// Entries lists copies of every registry entry in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, role := range r.order {
		out = append(out, r.entries[role].clone())
	}
	return out
}

// Entry returns a copy of the entry for role.
func (r *Registry) Entry(role Role) (Entry, bool) {
	e, ok := r.entries[role]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Known reports whether role has a registry entry.
func (r *Registry) Known(role Role) bool {
	_, ok := r.entries[role]
	return ok
}

// DisplayName returns the human readable role name, or the raw role.
func (r *Registry) DisplayName(role Role) string {
	if e, ok := r.entries[role]; ok {
		return e.Name
	}
	return string(role)
}

// DashboardRoute returns the landing path for role, DefaultRoute if unknown.
func (r *Registry) DashboardRoute(role Role) string {
	if e, ok := r.entries[role]; ok {
		return e.Dashboard
	}
	return DefaultRoute
}

// ResolveDashboard is DashboardRoute with the strict-mode check applied.
func (r *Registry) ResolveDashboard(role Role) (string, error) {
	if e, ok := r.entries[role]; ok {
		return e.Dashboard, nil
	}
	if r.strict {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return DefaultRoute, nil
}

// Permissions returns a copy of role's permission list; nil if unknown.
func (r *Registry) Permissions(role Role) []Permission {
	e, ok := r.entries[role]
	if !ok {
		return nil
	}
	return append([]Permission(nil), e.Permissions...)
}

// HasPermission reports whether perm is in role's permission set.
func (r *Registry) HasPermission(role Role, perm Permission) bool {
	set, ok := r.perms[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// RoleForDashboard maps a dashboard path back to its role.
func (r *Registry) RoleForDashboard(path string) (Role, bool) {
	for _, role := range r.order {
		if r.entries[role].Dashboard == path {
			return role, true
		}
	}
	return "", false
}

// HasRole reports whether role is a member of allowed.
func HasRole(role Role, allowed []Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// ParseRole normalises a role string as sent by the remote API.
// "student", "Operations Manager" and "technical-head" all parse.
func ParseRole(s string) (Role, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "" {
		return "", false
	}
	if alias, ok := roleAliases[norm]; ok {
		return alias, true
	}
	for _, e := range defaultEntries {
		if string(e.Role) == norm {
			return e.Role, true
		}
	}
	return Role(norm), false
}

// Slug turns a role into its URL segment, e.g. OPERATIONS_MANAGER -> operations-manager.
func (r Role) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(r)), "_", "-")
}
