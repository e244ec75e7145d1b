// Package session runs the player's fetch/resolve loop and keeps the last
// known good screen state alive across provider outages
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	"github.com/narabyte/pantalla-signage/internal/player/assets"
	"github.com/narabyte/pantalla-signage/internal/player/clock"
	"github.com/narabyte/pantalla-signage/internal/player/schedule"
	"github.com/narabyte/pantalla-signage/internal/player/store"
	"github.com/narabyte/pantalla-signage/internal/player/weather"
)

// State is the player's lifecycle state
type State string

const (
	// StateLoading means no fetch cycle has completed yet
	StateLoading State = "LOADING"
	// StateReady means the screen runs on fresh provider data
	StateReady State = "READY"
	// StateDegraded means the screen runs on persisted data while offline
	StateDegraded State = "DEGRADED"
	// StateUnconfigured means fetching failed and nothing was ever persisted
	StateUnconfigured State = "UNCONFIGURED"
)

// Connectivity tracks the provider link as observed by fetch outcomes
type Connectivity string

const (
	// Online means the last fetch succeeded
	Online Connectivity = "ONLINE"
	// Offline means the last fetch failed
	Offline Connectivity = "OFFLINE"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultTickInterval    = 30 * time.Second
)

// Fetcher retrieves screen state from the provider
type Fetcher interface {
	FetchScreen(ctx context.Context, terminalID string) (*v1alpha1.ScreenResponse, time.Time, error)
}

// Store persists screen bundles and the clock offset between runs
type Store interface {
	SaveBundle(terminalID string, resp *v1alpha1.ScreenResponse) error
	LoadBundle(terminalID string) (*v1alpha1.ScreenResponse, error)
	SaveOffset(offset time.Duration) error
	LoadOffset() (time.Duration, error)
}

// Snapshot is the only surface the presentation layer consumes
type Snapshot struct {
	State        State
	Connectivity Connectivity
	Config       *v1alpha1.TerminalConfig
	ActiveEvent  *v1alpha1.ScheduledEvent
	ClockOffset  time.Duration
	Weather      *weather.Reading
}

// Options configures a Session
type Options struct {
	TerminalID string
	Fetcher    Fetcher
	Store      Store

	// Weather and Assets are optional enrichments
	Weather weather.Provider
	Assets  assets.Materializer

	// RefreshInterval drives fetch-and-resolve; zero means 5 minutes
	RefreshInterval time.Duration
	// TickInterval drives resolve-only re-evaluation; zero means 30 seconds
	TickInterval time.Duration

	Logger zerolog.Logger

	// now overrides the time source in tests
	now func() time.Time
}

// Session owns the player state machine and its periodic drivers
type Session struct {
	opts   Options
	logger zerolog.Logger
	now    func() time.Time

	cancel context.CancelFunc

	mu           sync.RWMutex
	state        State
	connectivity Connectivity
	bundle       *v1alpha1.ScreenResponse
	offset       time.Duration
	active       *v1alpha1.ScheduledEvent
	weather      *weather.Reading
}

// New creates a session in the Loading state. Connectivity starts Online and
// is corrected by the first fetch outcome.
func New(opts Options) (*Session, error) {
	if opts.TerminalID == "" {
		return nil, errors.New("session: terminal ID is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("session: fetcher is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}

	return &Session{
		opts:         opts,
		logger:       opts.Logger.With().Str("component", "session").Str("terminal", opts.TerminalID).Logger(),
		now:          now,
		state:        StateLoading,
		connectivity: Online,
	}, nil
}

// Run starts both drivers and blocks until the context is canceled or Stop
// is called. The first refresh happens immediately.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.refreshLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.tickLoop(ctx)
	}()
	wg.Wait()
	return ctx.Err()
}

// Stop halts both drivers; safe to call from any goroutine
func (s *Session) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns a consistent copy of the current player state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:        s.state,
		Connectivity: s.connectivity,
		ClockOffset:  s.offset,
		Weather:      s.weather,
	}
	if s.bundle != nil {
		cfg := s.bundle.Config
		snap.Config = &cfg
	}
	if s.active != nil {
		active := *s.active
		snap.ActiveEvent = &active
	}
	return snap
}

func (s *Session) refreshLoop(ctx context.Context) {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Refresh performs one fetch-and-resolve cycle. Concurrent refreshes are
// allowed; the last writer wins.
func (s *Session) Refresh(ctx context.Context) {
	resp, receivedAt, err := s.opts.Fetcher.FetchScreen(ctx, s.opts.TerminalID)
	if err != nil {
		s.onFetchFailure(err)
		return
	}
	s.onFetchSuccess(ctx, resp, receivedAt)
}

// Tick re-resolves the active event from the committed snapshot without I/O
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return
	}
	now := s.now().Add(s.offset)
	s.active = resolve(s.bundle, now)
}

func (s *Session) onFetchSuccess(ctx context.Context, resp *v1alpha1.ScreenResponse, receivedAt time.Time) {
	offset := clock.ComputeOffset(resp.ServerTime, receivedAt)

	// Persistence failure degrades future offline recovery only; the live
	// screen still updates
	if err := s.opts.Store.SaveBundle(s.opts.TerminalID, resp); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist screen bundle")
	}
	if err := s.opts.Store.SaveOffset(offset); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist clock offset")
	}

	s.mu.Lock()
	s.bundle = resp
	s.offset = offset
	s.connectivity = Online
	s.state = StateReady
	s.active = resolve(resp, s.now().Add(offset))
	s.mu.Unlock()

	s.refreshWeather(ctx, resp)
	s.materializeAssets(ctx, resp)
}

func (s *Session) onFetchFailure(cause error) {
	s.logger.Warn().Err(cause).Msg("screen fetch failed, switching to offline path")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.connectivity = Offline

	if s.bundle == nil {
		bundle, err := s.opts.Store.LoadBundle(s.opts.TerminalID)
		if err != nil {
			if !errors.Is(err, store.ErrNoRecord) {
				s.logger.Error().Err(err).Msg("persisted bundle unusable")
			}
			s.state = StateUnconfigured
			s.active = nil
			return
		}
		s.bundle = bundle

		offset, err := s.opts.Store.LoadOffset()
		if err != nil {
			if !errors.Is(err, store.ErrNoRecord) {
				s.logger.Error().Err(err).Msg("persisted clock offset unusable")
			}
			offset = 0
		}
		s.offset = offset
	}

	s.state = StateDegraded
	s.active = resolve(s.bundle, s.now().Add(s.offset))
}

// resolve picks the active event for agenda screens; directory and rates
// screens have no single active event
func resolve(resp *v1alpha1.ScreenResponse, now time.Time) *v1alpha1.ScheduledEvent {
	if resp.Data.Agenda == nil {
		return nil
	}
	return schedule.ResolveActive(resp.Data.Agenda.Events, now)
}

func (s *Session) refreshWeather(ctx context.Context, resp *v1alpha1.ScreenResponse) {
	if s.opts.Weather == nil || resp.Config.Location == nil {
		return
	}

	reading, err := s.opts.Weather.Fetch(ctx, resp.Config.Location.Lat, resp.Config.Location.Lon)
	if err != nil {
		// Stale weather beats no screen; keep whatever we had
		s.logger.Warn().Err(err).Msg("weather refresh failed")
		return
	}

	s.mu.Lock()
	s.weather = &reading
	s.mu.Unlock()
}

// materializeAssets warms the offline cache for every image the screen may
// need. Best effort; failures leave the original refs usable online.
func (s *Session) materializeAssets(ctx context.Context, resp *v1alpha1.ScreenResponse) {
	if s.opts.Assets == nil {
		return
	}

	refs := make([]string, 0, len(resp.Config.Screensaver))
	refs = append(refs, resp.Config.Screensaver...)
	if resp.Config.Logo != "" {
		refs = append(refs, resp.Config.Logo)
	}
	if resp.Data.Agenda != nil {
		for i := range resp.Data.Agenda.Events {
			refs = append(refs, resp.Data.Agenda.Events[i].Images...)
		}
	}

	for _, ref := range refs {
		if _, err := s.opts.Assets.MaterializeForOffline(ctx, ref); err != nil {
			s.logger.Warn().Err(err).Str("ref", ref).Msg("asset materialization failed")
		}
	}
}

// String renders a snapshot for the resolve probe command
func (snap Snapshot) String() string {
	active := "none"
	if snap.ActiveEvent != nil {
		active = snap.ActiveEvent.Title
	}
	return fmt.Sprintf("state=%s connectivity=%s active=%s offset=%s",
		snap.State, snap.Connectivity, active, snap.ClockOffset)
}
