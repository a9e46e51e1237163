package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
	"vidyalink/app/internal/session"
	"vidyalink/app/internal/store"
)

type fixture struct {
	student  *StudentService
	teacher  *TeacherService
	requests *int64
}

func newFixture(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) fixture {
	t.Helper()

	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	mem := store.NewMemory()
	client := api.New(
		config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		func(context.Context) string { return "tok" },
		zerolog.Nop(),
	)
	sess := session.NewManager(mem, client, zerolog.Nop())
	loader := cache.NewLoader(mem, zerolog.Nop())
	cacheCfg := config.CacheConfig{TTL: time.Hour, DiaryRetentionDays: 15}

	return fixture{
		student:  NewStudent(client, loader, sess, cacheCfg, zerolog.Nop()),
		teacher:  NewTeacher(client, loader, cacheCfg, zerolog.Nop()),
		requests: &requests,
	}
}

func TestDashboardIsCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"attendanceRate": 92.5},
		})
	})

	for i := 0; i < 3; i++ {
		dashboard, err := f.student.Dashboard(ctx, false)
		if err != nil {
			t.Fatalf("Dashboard %d: %v", i, err)
		}
		if dashboard.AttendanceRate != 92.5 {
			t.Fatalf("unexpected dashboard %+v", dashboard)
		}
	}
	if got := atomic.LoadInt64(f.requests); got != 1 {
		t.Fatalf("expected a single backend hit, got %d", got)
	}
}

func TestDashboardForceRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	})

	if _, err := f.student.Dashboard(ctx, false); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if _, err := f.student.Dashboard(ctx, true); err != nil {
		t.Fatalf("forced Dashboard: %v", err)
	}
	if got := atomic.LoadInt64(f.requests); got != 2 {
		t.Fatalf("forceRefresh must hit the backend, got %d requests", got)
	}
}

func TestAnnouncementsFirstPageCachedLoadMoreIsNot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pageNum, _ := strconv.Atoi(page)
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"data":       []map[string]any{{"id": "a-" + page, "title": "Notice " + page}},
			"pagination": map[string]any{"currentPage": pageNum, "hasNextPage": true},
		})
	})

	first, err := f.student.Announcements(ctx, false)
	if err != nil {
		t.Fatalf("Announcements: %v", err)
	}
	if len(first.Items) != 1 || first.Items[0].ID != "a-1" {
		t.Fatalf("unexpected first page %+v", first.Items)
	}

	if _, err := f.student.Announcements(ctx, false); err != nil {
		t.Fatalf("cached Announcements: %v", err)
	}
	if got := atomic.LoadInt64(f.requests); got != 1 {
		t.Fatalf("first page should be cached, got %d requests", got)
	}

	more, err := f.student.MoreAnnouncements(ctx, 2)
	if err != nil {
		t.Fatalf("MoreAnnouncements: %v", err)
	}
	if more.Items[0].ID != "a-2" {
		t.Fatalf("unexpected second page %+v", more.Items)
	}
	if got := atomic.LoadInt64(f.requests); got != 2 {
		t.Fatalf("load-more must bypass the cache, got %d requests", got)
	}
}

func TestDiaryGoesThroughDatedCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"entries": []map[string]any{{"id": "d1", "subject": "Science"}},
		})
	})

	date := time.Now().AddDate(0, 0, -1).Format(cache.DateLayout)
	for i := 0; i < 2; i++ {
		entries, err := f.student.Diary(ctx, date, false)
		if err != nil {
			t.Fatalf("Diary %d: %v", i, err)
		}
		if len(entries) != 1 || entries[0].Subject != "Science" {
			t.Fatalf("unexpected entries %+v", entries)
		}
	}
	if got := atomic.LoadInt64(f.requests); got != 1 {
		t.Fatalf("expected one diary fetch, got %d", got)
	}
}

func TestMarkAttendanceInvalidatesRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teacher/studentslist":
			json.NewEncoder(w).Encode(map[string]any{
				"success":    true,
				"data":       []map[string]any{{"id": "s1", "rollNo": "101", "name": "Asha"}},
				"pagination": map[string]any{"currentPage": 1},
			})
		case "/teacher/attendance":
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	if _, err := f.teacher.Roster(ctx, "c1", false); err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if err := f.teacher.MarkAttendance(ctx, "c1", "2024-03-10", map[string]string{"s1": "present"}); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	if _, err := f.teacher.Roster(ctx, "c1", false); err != nil {
		t.Fatalf("Roster after attendance: %v", err)
	}
	// roster, attendance, roster again after invalidation
	if got := atomic.LoadInt64(f.requests); got != 3 {
		t.Fatalf("expected roster refetch after attendance, got %d requests", got)
	}
}
