package domain

import "strings"

// Permission is a string token gating one operation on one entity type.
type Permission string

const (
	PermissionReadActors  Permission = "get:actors"
	PermissionReadMovies  Permission = "get:movies"
	PermissionCreateActor Permission = "post:actors"
	PermissionDeleteActor Permission = "delete:actors"
	PermissionUpdateActor Permission = "patch:actors"
	PermissionUpdateMovie Permission = "patch:movies"
	PermissionCreateMovie Permission = "post:movies"
	PermissionDeleteMovie Permission = "delete:movies"
)

// Role names a fixed bundle of permissions.
type Role string

const (
	RoleCastingAssistant  Role = "casting_assistant"
	RoleCastingDirector   Role = "casting_director"
	RoleExecutiveProducer Role = "executive_producer"
)

var (
	assistantPermissions = []Permission{
		PermissionReadActors,
		PermissionReadMovies,
	}

	directorPermissions = append(append([]Permission{}, assistantPermissions...),
		PermissionCreateActor,
		PermissionDeleteActor,
		PermissionUpdateActor,
		PermissionUpdateMovie,
	)

	producerPermissions = append(append([]Permission{}, directorPermissions...),
		PermissionCreateMovie,
		PermissionDeleteMovie,
	)

	rolePermissions = map[Role][]Permission{
		RoleCastingAssistant:  assistantPermissions,
		RoleCastingDirector:   directorPermissions,
		RoleExecutiveProducer: producerPermissions,
	}
)

// Roles returns every known role from least to most privileged.
func Roles() []Role {
	return []Role{RoleCastingAssistant, RoleCastingDirector, RoleExecutiveProducer}
}

// ParseRole resolves a role name, accepting the display form ("Casting Director") as well.
func ParseRole(name string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	role := Role(normalized)
	if _, ok := rolePermissions[role]; !ok {
		return "", false
	}
	return role, true
}

// PermissionsFor returns a copy of the permissions granted to the role.
func PermissionsFor(role Role) ([]Permission, bool) {
	granted, ok := rolePermissions[role]
	if !ok {
		return nil, false
	}
	out := make([]Permission, len(granted))
	copy(out, granted)
	return out, true
}

// Grants reports whether the role holds the permission.
func (r Role) Grants(permission Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == permission {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func (p Permission) String() string {
	return string(p)
}
