package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
	"vidyalink/app/internal/jobs"
	"vidyalink/app/internal/log"
	"vidyalink/app/internal/service"
	"vidyalink/app/internal/session"
	"vidyalink/app/internal/store"
)

type app struct {
	cfg     *config.AppConfig
	log     zerolog.Logger
	store   store.Store
	session *session.Manager
	client  *api.Client
	student *service.StudentService
	teacher *service.TeacherService
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := log.New(cfg.Environment, cfg.Logging.Level)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.session.ResolveOnLaunch(ctx)

	if err := a.dispatch(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.AppConfig, logger zerolog.Logger) (*app, error) {
	st, err := store.Open(context.Background(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var mgr *session.Manager
	client := api.New(cfg.API, func(ctx context.Context) string { return mgr.Token(ctx) }, logger)
	mgr = session.NewManager(st, client, logger)

	loader := cache.NewLoader(st, logger)

	return &app{
		cfg:     cfg,
		log:     logger,
		store:   st,
		session: mgr,
		client:  client,
		student: service.NewStudent(client, loader, mgr, cfg.Cache, logger),
		teacher: service.NewTeacher(client, loader, cfg.Cache, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("store close failed")
	}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "profiles":
		return a.cmdProfiles()
	case "select-profile":
		return a.cmdSelectProfile(ctx, args)
	case "teacher-login":
		return a.cmdTeacherLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "dashboard":
		return a.cmdDashboard(ctx, args)
	case "diary":
		return a.cmdDiary(ctx, args)
	case "announcements":
		return a.cmdAnnouncements(ctx, args)
	case "results":
		return a.cmdResults(ctx, args)
	case "attendance":
		return a.cmdAttendance(ctx, args)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "teacher":
		return a.cmdTeacher(ctx, args)
	case "recover":
		return a.cmdRecover(ctx, args)
	case "sync":
		return a.cmdSync(args)
	default:
		usage()
		return nil
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: vidyalink <command> [flags]

session:
  login -mobile <number> -password <password>
  profiles
  select-profile -index <n>
  teacher-login -id <teacher id> -password <password>
  logout
  whoami

student data (all accept -refresh):
  dashboard | diary [-date YYYY-MM-DD] | announcements [-page n]
  results | attendance | profile

teacher data:
  teacher dashboard|profile|classes|roster|notes|addnote|deletenote|attendance

account recovery:
  recover request|verify|reset|resend

daemon:
  sync
`)
	os.Exit(2)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// Session commands ---------------------------------------------------------

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	mobile := fs.String("mobile", "", "registered mobile number")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	profiles, err := a.session.Login(ctx, *mobile, *password)
	if err != nil {
		return err
	}
	fmt.Printf("found %d profile(s); run 'vidyalink profiles' then 'vidyalink select-profile -index <n>'\n", len(profiles))
	return nil
}

func (a *app) cmdProfiles() error {
	state := a.session.State()
	if len(state.AvailableProfiles) == 0 {
		return fmt.Errorf("no profiles available; run 'vidyalink login' first")
	}
	for i, profile := range state.AvailableProfiles {
		fmt.Printf("[%d] %s (roll %s, class %s, access %s)\n",
			i, profile.User.Name, profile.User.RollNo, profile.User.Class,
			session.ParseAccess(profile.Access))
	}
	return nil
}

func (a *app) cmdSelectProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select-profile", flag.ExitOnError)
	index := fs.Int("index", -1, "profile index from 'vidyalink profiles'")
	fs.Parse(args)

	state := a.session.State()
	if *index < 0 || *index >= len(state.AvailableProfiles) {
		return fmt.Errorf("index out of range; run 'vidyalink profiles' to list candidates")
	}

	next, err := a.session.SelectProfile(ctx, state.AvailableProfiles[*index])
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", next.User.Name, next.Role)
	return nil
}

func (a *app) cmdTeacherLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("teacher-login", flag.ExitOnError)
	id := fs.String("id", "", "teacher id")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	state, err := a.session.TeacherLogin(ctx, *id, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (teacher)\n", state.User.Name)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func (a *app) cmdWhoami() error {
	state := a.session.State()
	if !state.Authenticated() {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s (%s)\n", state.User.Name, state.Role)
	return nil
}

// Student data commands ----------------------------------------------------

func refreshFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("refresh", false, "bypass the local cache")
}

func (a *app) requireStudent() error {
	state := a.session.State()
	if !state.Authenticated() || state.Role == session.RoleTeacher {
		return fmt.Errorf("sign in with a student profile first")
	}
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	refresh := refreshFlag(fs)
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	dashboard, err := a.student.Dashboard(ctx, *refresh)
	if err != nil {
		return err
	}
	return printJSON(dashboard)
}

func (a *app) cmdDiary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diary", flag.ExitOnError)
	refresh := refreshFlag(fs)
	date := fs.String("date", time.Now().Format(cache.DateLayout), "calendar date (YYYY-MM-DD)")
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	entries, err := a.student.Diary(ctx, *date, *refresh)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func (a *app) cmdAnnouncements(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("announcements", flag.ExitOnError)
	refresh := refreshFlag(fs)
	page := fs.Int("page", 1, "page number; pages past 1 always hit the network")
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	var (
		result service.AnnouncementsPage
		err    error
	)
	if *page <= 1 {
		result, err = a.student.Announcements(ctx, *refresh)
	} else {
		result, err = a.student.MoreAnnouncements(ctx, *page)
	}
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) cmdResults(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	refresh := refreshFlag(fs)
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	results, err := a.student.Results(ctx, *refresh)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func (a *app) cmdAttendance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("attendance", flag.ExitOnError)
	refresh := refreshFlag(fs)
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	attendance, err := a.student.Attendance(ctx, *refresh)
	if err != nil {
		return err
	}
	return printJSON(attendance)
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	refresh := refreshFlag(fs)
	fs.Parse(args)

	if err := a.requireStudent(); err != nil {
		return err
	}
	profile, err := a.student.Profile(ctx, *refresh)
	if err != nil {
		return err
	}
	return printJSON(profile)
}

// Teacher commands ---------------------------------------------------------

func (a *app) requireTeacher() error {
	state := a.session.State()
	if !state.Authenticated() || state.Role != session.RoleTeacher {
		return fmt.Errorf("sign in with 'vidyalink teacher-login' first")
	}
	return nil
}

func (a *app) cmdTeacher(ctx context.Context, args []string) error {
	if len(args) < 1 {
		usage()
	}
	if err := a.requireTeacher(); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "dashboard":
		fs := flag.NewFlagSet("teacher dashboard", flag.ExitOnError)
		refresh := refreshFlag(fs)
		fs.Parse(rest)
		dashboard, err := a.teacher.Dashboard(ctx, *refresh)
		if err != nil {
			return err
		}
		return printJSON(dashboard)
	case "profile":
		fs := flag.NewFlagSet("teacher profile", flag.ExitOnError)
		refresh := refreshFlag(fs)
		fs.Parse(rest)
		profile, err := a.teacher.Profile(ctx, *refresh)
		if err != nil {
			return err
		}
		return printJSON(profile)
	case "classes":
		fs := flag.NewFlagSet("teacher classes", flag.ExitOnError)
		refresh := refreshFlag(fs)
		fs.Parse(rest)
		classes, err := a.teacher.Classes(ctx, *refresh)
		if err != nil {
			return err
		}
		return printJSON(classes)
	case "roster":
		fs := flag.NewFlagSet("teacher roster", flag.ExitOnError)
		refresh := refreshFlag(fs)
		classID := fs.String("class", "", "classroom id")
		fs.Parse(rest)
		roster, err := a.teacher.Roster(ctx, *classID, *refresh)
		if err != nil {
			return err
		}
		return printJSON(roster)
	case "notes":
		fs := flag.NewFlagSet("teacher notes", flag.ExitOnError)
		classID := fs.String("class", "", "classroom id")
		fs.Parse(rest)
		notes, err := a.teacher.Notes(ctx, *classID)
		if err != nil {
			return err
		}
		return printJSON(notes)
	case "addnote":
		fs := flag.NewFlagSet("teacher addnote", flag.ExitOnError)
		classID := fs.String("class", "", "classroom id")
		subject := fs.String("subject", "", "subject")
		note := fs.String("note", "", "note text")
		date := fs.String("date", "", "calendar date, defaults to today")
		fs.Parse(rest)
		added, err := a.teacher.AddNote(ctx, *classID, *subject, *note, *date)
		if err != nil {
			return err
		}
		return printJSON(added)
	case "deletenote":
		fs := flag.NewFlagSet("teacher deletenote", flag.ExitOnError)
		entryID := fs.String("entry", "", "note entry id")
		fs.Parse(rest)
		if err := a.teacher.DeleteNote(ctx, *entryID); err != nil {
			return err
		}
		fmt.Println("note deleted")
		return nil
	case "attendance":
		fs := flag.NewFlagSet("teacher attendance", flag.ExitOnError)
		classID := fs.String("class", "", "classroom id")
		date := fs.String("date", time.Now().Format(cache.DateLayout), "calendar date")
		present := fs.String("present", "", "comma separated student ids marked present")
		absent := fs.String("absent", "", "comma separated student ids marked absent")
		fs.Parse(rest)

		entries := make(map[string]string)
		for _, id := range splitIDs(*present) {
			entries[id] = "present"
		}
		for _, id := range splitIDs(*absent) {
			entries[id] = "absent"
		}
		if err := a.teacher.MarkAttendance(ctx, *classID, *date, entries); err != nil {
			return err
		}
		fmt.Println("attendance recorded")
		return nil
	default:
		usage()
		return nil
	}
}

func splitIDs(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Recovery commands --------------------------------------------------------

func (a *app) cmdRecover(ctx context.Context, args []string) error {
	if len(args) < 1 {
		usage()
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "request", "resend":
		fs := flag.NewFlagSet("recover "+sub, flag.ExitOnError)
		mobile := fs.String("mobile", "", "registered mobile number")
		fs.Parse(rest)
		var (
			receipt api.OTPReceipt
			err     error
		)
		if sub == "request" {
			receipt, err = a.client.RequestPasswordReset(ctx, *mobile)
		} else {
			receipt, err = a.client.ResendOTP(ctx, *mobile)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s (sent to %s)\n", receipt.Message, receipt.MaskedMobile)
		return nil
	case "verify":
		fs := flag.NewFlagSet("recover verify", flag.ExitOnError)
		mobile := fs.String("mobile", "", "registered mobile number")
		otp := fs.String("otp", "", "one time password")
		fs.Parse(rest)
		receipt, err := a.client.VerifyOTP(ctx, *mobile, *otp)
		if err != nil {
			return err
		}
		fmt.Printf("verified; reset token: %s\n", receipt.ResetToken)
		return nil
	case "reset":
		fs := flag.NewFlagSet("recover reset", flag.ExitOnError)
		mobile := fs.String("mobile", "", "registered mobile number")
		token := fs.String("token", "", "reset token from 'recover verify'")
		password := fs.String("password", "", "new password")
		fs.Parse(rest)
		receipt, err := a.client.ResetPassword(ctx, *mobile, *token, *password)
		if err != nil {
			return err
		}
		fmt.Println(receipt.Message)
		return nil
	default:
		usage()
		return nil
	}
}

// Sync daemon --------------------------------------------------------------

func (a *app) cmdSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	schedule := fs.String("schedule", a.cfg.Sync.Schedule, "cron schedule (six fields)")
	fs.Parse(args)

	state := a.session.State()
	if !state.Authenticated() {
		return fmt.Errorf("sign in before starting sync")
	}

	refresher := jobs.NewRefresher(a.log)
	tasks := a.syncTasks(state)
	for _, task := range tasks {
		if err := refresher.Add(*schedule, task); err != nil {
			return fmt.Errorf("schedule %s: %w", task.Name, err)
		}
	}

	refresher.Start()
	a.log.Info().Str("schedule", *schedule).Int("tasks", len(tasks)).Msg("sync daemon running")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	refresher.Stop()
	a.log.Info().Msg("sync daemon stopped")
	return nil
}

func (a *app) syncTasks(state session.State) []jobs.Task {
	if state.Role == session.RoleTeacher {
		return []jobs.Task{
			{Name: "teacherDashboard", Run: func(ctx context.Context) error {
				_, err := a.teacher.Dashboard(ctx, true)
				return err
			}},
			{Name: "teacherClasslist", Run: func(ctx context.Context) error {
				_, err := a.teacher.Classes(ctx, true)
				return err
			}},
		}
	}
	return []jobs.Task{
		{Name: "dashboard", Run: func(ctx context.Context) error {
			_, err := a.student.Dashboard(ctx, true)
			return err
		}},
		{Name: "announcements", Run: func(ctx context.Context) error {
			_, err := a.student.Announcements(ctx, true)
			return err
		}},
		{Name: "diary", Run: func(ctx context.Context) error {
			_, err := a.student.Diary(ctx, time.Now().Format(cache.DateLayout), true)
			return err
		}},
	}
}
