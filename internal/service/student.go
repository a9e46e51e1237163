// Package service exposes each screen's data set: session-scoped reads go
// through the TTL loader, mutations go straight to the backend.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
	"vidyalink/app/internal/session"
)

// AnnouncementsPage is the first page plus its pagination cursor, cached
// together the way the app persists them.
type AnnouncementsPage struct {
	Items      []api.Announcement `json:"data"`
	Pagination api.Pagination     `json:"pagination"`
}

type StudentService struct {
	api            *api.Client
	loader         *cache.Loader
	session        *session.Manager
	ttl            time.Duration
	diaryRetention int
	pageSize       int
	log            zerolog.Logger
}

func NewStudent(client *api.Client, loader *cache.Loader, sess *session.Manager, cfg config.CacheConfig, log zerolog.Logger) *StudentService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	retention := cfg.DiaryRetentionDays
	if retention <= 0 {
		retention = cache.DefaultDiaryRetentionDays
	}
	return &StudentService{
		api:            client,
		loader:         loader,
		session:        sess,
		ttl:            ttl,
		diaryRetention: retention,
		pageSize:       10,
		log:            log,
	}
}

func (s *StudentService) Dashboard(ctx context.Context, force bool) (api.Dashboard, error) {
	key := cache.Key("dashboard", s.session.ActiveUserID())
	return cache.Load(ctx, s.loader, key, s.ttl, force, s.api.Dashboard)
}

// Diary serves one calendar date from the per-date cache; stale dates are
// pruned as a side effect of each successful fetch.
func (s *StudentService) Diary(ctx context.Context, date string, force bool) ([]api.DiaryEntry, error) {
	key := cache.Key("diaryEntries", s.session.ActiveUserID())
	return cache.LoadDated(ctx, s.loader, key, date, s.diaryRetention, force,
		func(ctx context.Context) ([]api.DiaryEntry, error) {
			return s.api.Diary(ctx, date)
		})
}

// Announcements caches the first page only; MoreAnnouncements always goes
// to the network, so paging never serves a mixed-age list.
func (s *StudentService) Announcements(ctx context.Context, force bool) (AnnouncementsPage, error) {
	key := cache.Key("announcements", "")
	return cache.Load(ctx, s.loader, key, s.ttl, force,
		func(ctx context.Context) (AnnouncementsPage, error) {
			items, pagination, err := s.api.Announcements(ctx, 1, s.pageSize)
			if err != nil {
				return AnnouncementsPage{}, err
			}
			return AnnouncementsPage{Items: items, Pagination: pagination}, nil
		})
}

func (s *StudentService) MoreAnnouncements(ctx context.Context, page int) (AnnouncementsPage, error) {
	items, pagination, err := s.api.Announcements(ctx, page, s.pageSize)
	if err != nil {
		return AnnouncementsPage{}, err
	}
	return AnnouncementsPage{Items: items, Pagination: pagination}, nil
}

func (s *StudentService) Results(ctx context.Context, force bool) ([]api.Result, error) {
	key := cache.Key("results", s.session.ActiveUserID())
	return cache.Load(ctx, s.loader, key, s.ttl, force, s.api.Results)
}

func (s *StudentService) Attendance(ctx context.Context, force bool) (api.AttendanceSummary, error) {
	key := cache.Key("attendance", s.session.ActiveUserID())
	return cache.Load(ctx, s.loader, key, s.ttl, force, s.api.Attendance)
}

func (s *StudentService) Profile(ctx context.Context, force bool) (api.StudentProfile, error) {
	key := cache.Key("profile", s.session.ActiveUserID())
	return cache.Load(ctx, s.loader, key, s.ttl, force, s.api.UserProfile)
}
