// Package session owns who is acting: the authentication state machine,
// its durable persistence, and the bearer token handed to the API client.
package session

import (
	"context"
	"errors"

	"vidyalink/app/internal/api"
)

// Persisted keys, shared with the mobile app's storage layout.
const (
	keyAuthToken     = "authToken"
	keyUserData      = "userData"
	keyActiveProfile = "activeProfile"
	keyProfiles      = "profiles"
)

type Role string

const (
	RoleStudent           Role = "student"
	RoleRestrictedStudent Role = "restricted"
	RoleTeacher           Role = "teacher"
)

type AccessLevel string

const (
	AccessFull       AccessLevel = "full"
	AccessRestricted AccessLevel = "restricted"
)

// ParseAccess normalizes the backend's access string once, at the session
// boundary. Anything that is not exactly "full" is restricted.
func ParseAccess(access string) AccessLevel {
	if access == string(AccessFull) {
		return AccessFull
	}
	return AccessRestricted
}

func roleForAccess(access string) Role {
	if ParseAccess(access) == AccessFull {
		return RoleStudent
	}
	return RoleRestrictedStudent
}

type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticated
)

// State is a snapshot of the session. Exactly one of {no profile, one
// active profile} holds; AvailableProfiles is non-empty only while no
// profile is active.
type State struct {
	Status            Status
	Role              Role
	User              api.User
	ActiveProfile     *api.Profile
	AvailableProfiles []api.Profile
}

func (s State) Authenticated() bool { return s.Status == StatusAuthenticated }

// ErrNoProfiles reports a student login that matched zero profiles. The
// caller surfaces it as a failure, not as an empty selection screen.
var ErrNoProfiles = errors.New("session: no profiles found for this account")

// Backend is the slice of the API client the session layer needs.
type Backend interface {
	Login(ctx context.Context, mobile, password string) ([]api.Profile, error)
	TeacherLogin(ctx context.Context, teacherID, password string) (string, api.User, error)
}
