package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
)

type TeacherService struct {
	api    *api.Client
	loader *cache.Loader
	ttl    time.Duration
	log    zerolog.Logger
}

func NewTeacher(client *api.Client, loader *cache.Loader, cfg config.CacheConfig, log zerolog.Logger) *TeacherService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &TeacherService{api: client, loader: loader, ttl: ttl, log: log}
}

func (s *TeacherService) Dashboard(ctx context.Context, force bool) (api.TeacherDashboard, error) {
	return cache.Load(ctx, s.loader, cache.Key("teacherDashboard", ""), s.ttl, force, s.api.TeacherDashboard)
}

func (s *TeacherService) Profile(ctx context.Context, force bool) (api.TeacherProfile, error) {
	return cache.Load(ctx, s.loader, cache.Key("teacherProfile", ""), s.ttl, force, s.api.TeacherProfile)
}

func (s *TeacherService) Classes(ctx context.Context, force bool) ([]api.Classroom, error) {
	return cache.Load(ctx, s.loader, cache.Key("teacherClasslist", ""), s.ttl, force, s.api.TeacherClasses)
}

// Roster caches per classroom so switching classes never shows another
// class's students.
func (s *TeacherService) Roster(ctx context.Context, classroomID string, force bool) ([]api.StudentSummary, error) {
	key := cache.Key("teacherClass", classroomID)
	return cache.Load(ctx, s.loader, key, s.ttl, force,
		func(ctx context.Context) ([]api.StudentSummary, error) {
			students, _, err := s.api.TeacherStudents(ctx, classroomID, 1, 100)
			return students, err
		})
}

// Notes are teacher-editable, so they are never cached.
func (s *TeacherService) Notes(ctx context.Context, classroomID string) ([]api.TeacherNote, error) {
	return s.api.TeacherNotes(ctx, classroomID)
}

func (s *TeacherService) AddNote(ctx context.Context, classroomID, subject, note, date string) (api.TeacherNote, error) {
	return s.api.TeacherAddNote(ctx, classroomID, subject, note, date)
}

func (s *TeacherService) DeleteNote(ctx context.Context, entryID string) error {
	return s.api.TeacherDeleteNote(ctx, entryID)
}

// MarkAttendance submits and invalidates the roster's class cache so a
// follow-up read reflects today's marks.
func (s *TeacherService) MarkAttendance(ctx context.Context, classroomID, date string, entries map[string]string) error {
	if err := s.api.TeacherMarkAttendance(ctx, classroomID, date, entries); err != nil {
		return err
	}
	if err := s.loader.Invalidate(ctx, cache.Key("teacherClass", classroomID)); err != nil {
		s.log.Warn().Err(err).Str("classroom", classroomID).Msg("roster cache invalidate failed")
	}
	return nil
}
