package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
	"vidyalink/app/internal/session"
	"vidyalink/app/internal/store"
)

func devServerConfig() config.DevServerConfig {
	return config.DevServerConfig{
		Host:      "127.0.0.1",
		Port:      0,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

type harness struct {
	session *session.Manager
	client  *api.Client
	store   *store.Memory
}

func newHarness(t *testing.T) harness {
	t.Helper()

	fixtures, err := SeedFixtures()
	if err != nil {
		t.Fatalf("SeedFixtures: %v", err)
	}
	srv := New(devServerConfig(), "test", fixtures, zerolog.Nop())
	backend := httptest.NewServer(srv.Handler())
	t.Cleanup(backend.Close)

	mem := store.NewMemory()
	var mgr *session.Manager
	client := api.New(
		config.APIConfig{BaseURL: backend.URL, Timeout: 5 * time.Second},
		func(ctx context.Context) string { return mgr.Token(ctx) },
		zerolog.Nop(),
	)
	mgr = session.NewManager(mem, client, zerolog.Nop())

	return harness{session: mgr, client: client, store: mem}
}

func TestStudentLoginFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	profiles, err := h.session.Login(ctx, SeedGuardianMobile, SeedGuardianPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 seeded profiles, got %d", len(profiles))
	}
	if h.session.State().Authenticated() {
		t.Fatal("login must not authenticate before selection")
	}

	state, err := h.session.SelectProfile(ctx, profiles[0])
	if err != nil {
		t.Fatalf("SelectProfile: %v", err)
	}
	if state.Role != session.RoleStudent {
		t.Fatalf("first seeded profile has full access, got role %q", state.Role)
	}

	dashboard, err := h.client.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dashboard.Student.Name != profiles[0].User.Name {
		t.Fatalf("dashboard belongs to %q, selected %q", dashboard.Student.Name, profiles[0].User.Name)
	}

	today := time.Now().Format(cache.DateLayout)
	entries, err := h.client.Diary(ctx, today)
	if err != nil {
		t.Fatalf("Diary: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected seeded diary entries for today")
	}

	items, pagination, err := h.client.Announcements(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Announcements: %v", err)
	}
	if len(items) != 10 || !pagination.HasNextPage {
		t.Fatalf("unexpected announcements page: %d items, %+v", len(items), pagination)
	}
}

func TestRestrictedProfileRole(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	profiles, err := h.session.Login(ctx, SeedGuardianMobile, SeedGuardianPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	state, err := h.session.SelectProfile(ctx, profiles[1])
	if err != nil {
		t.Fatalf("SelectProfile: %v", err)
	}
	if state.Role != session.RoleRestrictedStudent {
		t.Fatalf("second seeded profile is restricted, got role %q", state.Role)
	}
}

func TestWrongPasswordIsAuthError(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Login(context.Background(), SeedGuardianMobile, "nope")
	if !api.IsKind(err, api.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestTeacherFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	state, err := h.session.TeacherLogin(ctx, SeedTeacherID, SeedTeacherPassword)
	if err != nil {
		t.Fatalf("TeacherLogin: %v", err)
	}
	if state.Role != session.RoleTeacher {
		t.Fatalf("expected teacher role, got %q", state.Role)
	}

	dashboard, err := h.client.TeacherDashboard(ctx)
	if err != nil {
		t.Fatalf("TeacherDashboard: %v", err)
	}
	if dashboard.TotalClasses != 2 {
		t.Fatalf("expected 2 seeded classes, got %d", dashboard.TotalClasses)
	}

	classes, err := h.client.TeacherClasses(ctx)
	if err != nil {
		t.Fatalf("TeacherClasses: %v", err)
	}
	students, _, err := h.client.TeacherStudents(ctx, classes[0].ID, 1, 20)
	if err != nil {
		t.Fatalf("TeacherStudents: %v", err)
	}
	if len(students) == 0 {
		t.Fatal("expected seeded roster")
	}

	note, err := h.client.TeacherAddNote(ctx, classes[0].ID, "Mathematics", "Revise chapter 4", "")
	if err != nil {
		t.Fatalf("TeacherAddNote: %v", err)
	}
	notes, err := h.client.TeacherNotes(ctx, classes[0].ID)
	if err != nil {
		t.Fatalf("TeacherNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != note.ID {
		t.Fatalf("unexpected notes %+v", notes)
	}
	if err := h.client.TeacherDeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("TeacherDeleteNote: %v", err)
	}

	marks := map[string]string{students[0].ID: "present"}
	if err := h.client.TeacherMarkAttendance(ctx, classes[0].ID, "2024-03-10", marks); err != nil {
		t.Fatalf("TeacherMarkAttendance: %v", err)
	}
}

func TestTeacherCannotReadStudentRoutes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	if _, err := h.session.TeacherLogin(ctx, SeedTeacherID, SeedTeacherPassword); err != nil {
		t.Fatalf("TeacherLogin: %v", err)
	}
	_, err := h.client.Dashboard(ctx)
	if !api.IsKind(err, api.KindAuth) {
		t.Fatalf("expected auth error for role mismatch, got %v", err)
	}
}

func TestPasswordRecoveryFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	receipt, err := h.client.RequestPasswordReset(ctx, SeedGuardianMobile)
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if receipt.MaskedMobile != "******9999" {
		t.Fatalf("unexpected masked mobile %q", receipt.MaskedMobile)
	}

	verified, err := h.client.VerifyOTP(ctx, SeedGuardianMobile, "123456")
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if verified.ResetToken == "" {
		t.Fatal("expected reset token")
	}

	if _, err := h.client.ResetPassword(ctx, SeedGuardianMobile, verified.ResetToken, "newpass456"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, err := h.session.Login(ctx, SeedGuardianMobile, SeedGuardianPassword); !api.IsKind(err, api.KindAuth) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
	if _, err := h.session.Login(ctx, SeedGuardianMobile, "newpass456"); err != nil {
		t.Fatalf("new password should work, got %v", err)
	}
}

func TestResendOTPUnknownMobile(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.ResendOTP(context.Background(), "0000000000")
	if !api.IsKind(err, api.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
