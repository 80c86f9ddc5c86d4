package domain

import "strings"

type RoleKind string

const (
	RoleOwner  RoleKind = "owner"
	RoleAdmin  RoleKind = "admin"
	RoleViewer RoleKind = "viewer"
)

var roleRanks = map[RoleKind]int{
	RoleViewer: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// RoleKinds lists every role kind from lowest to highest rank.
func RoleKinds() []RoleKind {
	return []RoleKind{RoleViewer, RoleAdmin, RoleOwner}
}

// Rank orders role kinds Viewer(1) < Admin(2) < Owner(3). Unknown kinds rank 0.
func (k RoleKind) Rank() int {
	return roleRanks[k]
}

func (k RoleKind) Valid() bool {
	return k.Rank() > 0
}

func ParseRoleKind(raw string) (RoleKind, error) {
	kind := RoleKind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", ErrInvalidInput
	}
	return kind, nil
}
