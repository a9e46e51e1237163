package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/store"
)

// Manager funnels every session mutation through one place. All durable
// writes happen before the in-memory transition, so a storage failure
// never leaves memory claiming a state the next launch cannot restore.
type Manager struct {
	mu      sync.Mutex
	store   store.Store
	backend Backend
	log     zerolog.Logger

	state State
	token string
}

func NewManager(s store.Store, backend Backend, log zerolog.Logger) *Manager {
	return &Manager{store: s, backend: backend, log: log}
}

// Token is the API client's token source.
func (m *Manager) Token(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	out := m.state
	if m.state.ActiveProfile != nil {
		profile := *m.state.ActiveProfile
		out.ActiveProfile = &profile
	}
	out.AvailableProfiles = append([]api.Profile(nil), m.state.AvailableProfiles...)
	return out
}

// ResolveOnLaunch restores the persisted session without a network call.
// An active profile wins; otherwise a stored token counts as authenticated
// until the first API call says otherwise. Any read error degrades to
// Unauthenticated.
func (m *Manager) ResolveOnLaunch(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{Status: StatusUnauthenticated}
	m.token = ""

	var profile api.Profile
	if ok := m.readJSON(ctx, keyActiveProfile, &profile); ok {
		m.state = State{
			Status:        StatusAuthenticated,
			Role:          roleForAccess(profile.Access),
			User:          profile.User,
			ActiveProfile: &profile,
		}
		m.token = m.readToken(ctx)
		return m.snapshotLocked()
	}

	if token := m.readToken(ctx); token != "" {
		var user api.User
		m.readJSON(ctx, keyUserData, &user)
		role := RoleStudent
		if user.Role == string(RoleTeacher) {
			role = RoleTeacher
		}
		m.state = State{Status: StatusAuthenticated, Role: role, User: user}
		m.token = token
		return m.snapshotLocked()
	}

	// Relaunch mid profile selection: re-offer the stored candidates.
	var profiles []api.Profile
	if ok := m.readJSON(ctx, keyProfiles, &profiles); ok && len(profiles) > 0 {
		m.state.AvailableProfiles = profiles
	}
	return m.snapshotLocked()
}

// Login runs the student path. Success persists the candidate profiles and
// stays Unauthenticated; authentication completes in SelectProfile.
func (m *Manager) Login(ctx context.Context, mobile, password string) ([]api.Profile, error) {
	profiles, err := m.backend.Login(ctx, mobile, password)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}

	payload, err := json.Marshal(profiles)
	if err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, keyProfiles, payload); err != nil {
		return nil, fmt.Errorf("persist profiles: %w", err)
	}
	// Drop any stale credentials so the next launch lands on selection.
	if err := m.store.Delete(ctx, keyAuthToken); err != nil {
		m.log.Warn().Err(err).Msg("clear stale token failed")
	}
	if err := m.store.Delete(ctx, keyUserData); err != nil {
		m.log.Warn().Err(err).Msg("clear stale user data failed")
	}

	m.state = State{Status: StatusUnauthenticated, AvailableProfiles: profiles}
	m.token = ""
	return profiles, nil
}

// TeacherLogin authenticates directly: there is no profile selection step
// for teachers.
func (m *Manager) TeacherLogin(ctx context.Context, teacherID, password string) (State, error) {
	token, user, err := m.backend.TeacherLogin(ctx, teacherID, password)
	if err != nil {
		return m.State(), err
	}
	user.Role = string(RoleTeacher)

	userPayload, err := json.Marshal(user)
	if err != nil {
		return m.State(), fmt.Errorf("encode user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, keyAuthToken, []byte(token)); err != nil {
		return m.snapshotLocked(), fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(ctx, keyUserData, userPayload); err != nil {
		if restoreErr := m.store.Delete(ctx, keyAuthToken); restoreErr != nil {
			m.log.Warn().Err(restoreErr).Msg("rollback token failed")
		}
		return m.snapshotLocked(), fmt.Errorf("persist user: %w", err)
	}

	m.state = State{Status: StatusAuthenticated, Role: RoleTeacher, User: user}
	m.token = token
	return m.snapshotLocked(), nil
}

// SelectProfile completes student authentication. Durable writes happen
// first; on any failure the previous records are restored and memory is
// left untouched. Selecting the same profile again is safe.
func (m *Manager) SelectProfile(ctx context.Context, profile api.Profile) (State, error) {
	profilePayload, err := json.Marshal(profile)
	if err != nil {
		return m.State(), fmt.Errorf("encode profile: %w", err)
	}
	userPayload, err := json.Marshal(profile.User)
	if err != nil {
		return m.State(), fmt.Errorf("encode user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	undo := m.snapshotKeys(ctx, keyActiveProfile, keyAuthToken, keyUserData)

	if err := m.writeSelection(ctx, profile, profilePayload, userPayload); err != nil {
		m.restoreKeys(ctx, undo)
		return m.snapshotLocked(), err
	}

	m.state = State{
		Status:        StatusAuthenticated,
		Role:          roleForAccess(profile.Access),
		User:          profile.User,
		ActiveProfile: &profile,
	}
	if profile.Token != "" {
		m.token = profile.Token
	}
	return m.snapshotLocked(), nil
}

func (m *Manager) writeSelection(ctx context.Context, profile api.Profile, profilePayload, userPayload []byte) error {
	if err := m.store.Set(ctx, keyActiveProfile, profilePayload); err != nil {
		return fmt.Errorf("persist active profile: %w", err)
	}
	if profile.Token != "" {
		if err := m.store.Set(ctx, keyAuthToken, []byte(profile.Token)); err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
	}
	if err := m.store.Set(ctx, keyUserData, userPayload); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// Logout clears every session key and resets memory. Absent keys are fine,
// so a fresh install can log out without error.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, key := range []string{keyAuthToken, keyUserData, keyActiveProfile, keyProfiles} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("logout delete failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	m.state = State{Status: StatusUnauthenticated}
	m.token = ""
	return firstErr
}

// ActiveUserID keys user-scoped caches: roll number, then id, then the
// shared "default" bucket.
func (m *Manager) ActiveUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User.RollNo != "" {
		return m.state.User.RollNo
	}
	return m.state.User.ID
}

func (m *Manager) readToken(ctx context.Context) string {
	raw, err := m.store.Get(ctx, keyAuthToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn().Err(err).Msg("token read failed")
		}
		return ""
	}
	return string(raw)
}

func (m *Manager) readJSON(ctx context.Context, key string, out any) bool {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn().Err(err).Str("key", key).Msg("session read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("session record corrupt")
		return false
	}
	return true
}

type keySnapshot struct {
	key     string
	value   []byte
	existed bool
}

func (m *Manager) snapshotKeys(ctx context.Context, keys ...string) []keySnapshot {
	snaps := make([]keySnapshot, 0, len(keys))
	for _, key := range keys {
		value, err := m.store.Get(ctx, key)
		snaps = append(snaps, keySnapshot{key: key, value: value, existed: err == nil})
	}
	return snaps
}

func (m *Manager) restoreKeys(ctx context.Context, snaps []keySnapshot) {
	for _, snap := range snaps {
		var err error
		if snap.existed {
			err = m.store.Set(ctx, snap.key, snap.value)
		} else {
			err = m.store.Delete(ctx, snap.key)
		}
		if err != nil {
			m.log.Warn().Err(err).Str("key", snap.key).Msg("session rollback failed")
		}
	}
}
