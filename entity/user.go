package entity

import "strings"

const groupOwnerPrefix = "GROUP:"

// AuthenticatedUser is the caller identity resolved from a session.
type AuthenticatedUser struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// AnonymousUser is used when sessions are not required.
var AnonymousUser = AuthenticatedUser{Name: "anonymous"}

// Owners lists the owner values that designate the user: its name and one
// GROUP: entry per group.
func (u AuthenticatedUser) Owners() []string {
	owners := make([]string, 0, len(u.Groups)+1)
	owners = append(owners, u.Name)
	for _, group := range u.Groups {
		owners = append(owners, GroupOwner(group))
	}
	return owners
}

func (u AuthenticatedUser) Owns(owner string) bool {
	if owner == u.Name {
		return true
	}
	if !strings.HasPrefix(owner, groupOwnerPrefix) {
		return false
	}
	group := strings.TrimPrefix(owner, groupOwnerPrefix)
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

func GroupOwner(group string) string {
	return groupOwnerPrefix + group
}
