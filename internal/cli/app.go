package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/config"
	"github.com/fairwaylabs/scorecard/internal/gateway"
	"github.com/fairwaylabs/scorecard/internal/logging"
	"github.com/fairwaylabs/scorecard/internal/netx"
	"github.com/fairwaylabs/scorecard/internal/query"
	"github.com/fairwaylabs/scorecard/internal/services"
	"github.com/fairwaylabs/scorecard/internal/store"
	"github.com/fairwaylabs/scorecard/internal/syncer"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the entity services, the queue processor, and the REPL.
type App struct {
	config    *config.Config
	stores    *store.Stores
	users     *services.UserService
	rounds    *services.RoundService
	clubs     *services.ClubService
	courses   *services.CourseService
	processor *syncer.Processor
	cache     *query.Cache
	checker   *netx.PingChecker
	log       logging.Logger

	// mode is written by the watcher goroutine and read by the sync loop
	// and the REPL status line
	modeMu sync.RWMutex
	mode   Mode

	reader *bufio.Reader

	// activeRound is the round currently being played, 0 when none.
	activeRound int64
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	stores, err := store.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	userService := services.NewUserService(stores.Users)

	remote := gateway.NewHTTPClient(cfg.BaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, userService)
	checker := netx.NewPingChecker(remote, cfg.HTTPTimeout)

	roundService := services.NewRoundService(stores.DB, stores.Rounds, stores.Holes,
		stores.Queue, remote, checker, log)
	clubService := services.NewClubService(stores.DB, stores.Clubs, stores.Queue,
		remote, checker, log)
	courseService := services.NewCourseService(stores.DB, stores.Courses, stores.HoleDefs,
		stores.Queue, remote, checker, log)

	processor := syncer.NewProcessor(stores.Queue, roundService, clubService, courseService, log,
		syncer.WithMaxAttempts(cfg.MaxSyncAttempts))

	return &App{
		config:    cfg,
		stores:    stores,
		users:     userService,
		rounds:    roundService,
		clubs:     clubService,
		courses:   courseService,
		processor: processor,
		cache:     query.New(),
		checker:   checker,
		log:       log,
		mode:      ModeOffline,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// probeOnline performs a fresh reachability check so user-initiated commands
// don't act on a stale cached state, and keeps Mode current.
func (a *App) probeOnline(ctx context.Context) bool {
	online := a.checker.Probe(ctx)
	if online {
		a.setMode(ctx, ModeOnline)
	} else {
		a.setMode(ctx, ModeOffline)
	}
	return online
}

// Mode returns the last observed connectivity state.
func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher probes the backend on a fixed interval. An
// offline-to-online transition kicks off a queue pass immediately.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wasOnline := a.Mode() == ModeOnline
			online := a.checker.Probe(ctx)
			if online {
				a.setMode(ctx, ModeOnline)
				if !wasOnline {
					a.drainQueue(ctx)
				}
			} else {
				a.setMode(ctx, ModeOffline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// StartSyncLoop drains the queue on a fixed interval while online.
func (a *App) StartSyncLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.Mode() == ModeOnline {
				a.drainQueue(ctx)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) drainQueue(ctx context.Context) {
	stats, err := a.processor.ProcessAll(ctx)
	if err != nil {
		a.log.Error(ctx, "queue pass failed", "error", err)
		return
	}
	if stats.Processed > 0 {
		a.log.Info(ctx, "queue pass finished",
			"processed", stats.Processed, "succeeded", stats.Succeeded,
			"failed", stats.Failed, "quarantined", stats.Quarantined)
		a.cache.Invalidate(query.Key("rounds"))
		a.cache.Invalidate(query.Key("clubs"))
		a.cache.Invalidate(query.Key("courses"))
	}
}

func (a *App) hasIdentity(ctx context.Context) bool {
	_, err := a.users.Get(ctx)
	return err == nil
}

// ensureIdentity prompts for a username on first run.
func (a *App) ensureIdentity(ctx context.Context) error {
	if a.hasIdentity(ctx) {
		return nil
	}
	username, err := GetSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Display name (optional)", os.Stdout)
	if err != nil {
		return err
	}
	_, err = a.users.Save(ctx, username, displayName)
	if errors.Is(err, common.ErrValidation) {
		fmt.Println(err.Error())
		return a.ensureIdentity(ctx)
	}
	return err
}

// Run starts the connectivity watcher, the background sync loop, and the
// REPL. It blocks until the user exits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	defer a.stores.Close()

	if err := a.ensureIdentity(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.StartSyncLoop(ctx, a.config.SyncInterval)

	fmt.Println("Scorecard CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) getStatus() string {
	ctx := context.Background()
	s := string(a.Mode())
	if u, err := a.users.Get(ctx); err == nil {
		s = u.Username + " " + s
	}
	if n, err := a.processor.PendingCount(ctx); err == nil && n > 0 {
		s = fmt.Sprintf("%s, %d queued", s, n)
	}
	return "(" + s + ")"
}
