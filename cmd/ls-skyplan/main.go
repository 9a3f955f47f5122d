// Command ls-skyplan is a terminal UI for planning a night of observing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/config"
	"github.com/litescript/ls-skyplan/internal/logging"
	"github.com/litescript/ls-skyplan/internal/schedule"
	"github.com/litescript/ls-skyplan/internal/state"
	"github.com/litescript/ls-skyplan/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	scheduleMode  bool
	planPath      string
	frames        int
	exposureSec   float64
	atFlag        string
)

const (
	minRefresh = 10 * time.Second
	maxRefresh = time.Hour
)

// app holds the components shared by the TUI and headless modes.
type app struct {
	cfg    *config.Config
	loc    *time.Location
	repo   *catalog.Repository
	engine *catalog.Engine
	state  *state.Manager
	logger *logging.Logger
	at     time.Time // fixed instant; zero means now
}

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file (default: $SKYPLAN_CONFIG or ./skyplan.yaml)")
	refresh := flag.Duration("refresh", 0, "Recompute interval (e.g., 1m); overrides engine.refresh_interval")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	lat := flag.Float64("lat", 0, "Site latitude in degrees; overrides site.latitude")
	lon := flag.Float64("lon", 0, "Site longitude in degrees, east positive; overrides site.longitude")
	lang := flag.String("lang", "", "Description language; overrides catalog.language")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Repeat computation at interval (e.g., 5m)")
	flag.StringVar(&snapshotPath, "json", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&scheduleMode, "schedule", false, "Print back-to-back windows for tonight's visible objects")
	flag.StringVar(&planPath, "plan", "", "With -schedule, also write the session plan as JSON (use - for stdout)")
	flag.IntVar(&frames, "frames", ui.DefaultFrames, "Frames per target for -schedule")
	flag.Float64Var(&exposureSec, "exposure", ui.DefaultExposureSec, "Seconds per frame for -schedule")
	flag.StringVar(&atFlag, "at", "", "Compute for this instant (RFC 3339) instead of now")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			cfg.Site.Latitude = *lat
		case "lon":
			cfg.Site.Longitude = *lon
		case "lang":
			cfg.Catalog.Language = *lang
		case "log-level":
			cfg.Log.Level = *logLevel
		case "refresh":
			cfg.Engine.RefreshInterval = *refresh
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Validate refresh interval
	interval := cfg.Engine.RefreshInterval
	if interval < minRefresh {
		interval = minRefresh
	} else if interval > maxRefresh {
		interval = maxRefresh
	}

	var at time.Time
	if atFlag != "" {
		at, err = time.Parse(time.RFC3339, atFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -at: %v\n", err)
			os.Exit(1)
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := logging.NewWithFormat(cfg.LogLevel(), cfg.LogFormat(), os.Stderr)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	fetcher := catalog.NewFetcher(
		catalog.WithCatalogSource(cfg.Catalog.Source),
		catalog.WithDescriptionsSource(cfg.Catalog.Descriptions),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithLogger(logger.With("component", "fetcher")),
	)

	descriptions, err := fetcher.FetchDescriptions(ctx, cfg.Catalog.Language)
	if err != nil {
		logger.Warn("Descriptions unavailable for %q: %v", cfg.Catalog.Language, err)
		descriptions = catalog.Descriptions{}
	}

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = interval

	a := &app{
		cfg:  cfg,
		loc:  loc,
		repo: catalog.NewFetcherRepository(fetcher, cfg.Catalog.TTL),
		engine: catalog.NewEngine(catalog.Options{
			Workers:       cfg.Engine.Workers,
			PaddingHours:  cfg.Track.PaddingHours,
			CivilTwilight: cfg.Track.CivilTwilight,
			Location:      loc,
			Descriptions:  descriptions,
			Logger:        logger.With("component", "engine"),
		}),
		state:  state.NewManager(stateCfg),
		logger: logger,
		at:     at,
	}

	// Headless mode: no TUI. Piped output never gets the TUI either.
	headless := summaryMode || snapshotPath != "" || scheduleMode
	if !headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		summaryMode = true
		headless = true
	}
	if headless {
		runHeadless(ctx, a)
		return
	}

	// Create TUI model; 'r' recomputes out of band
	var p *tea.Program
	model := ui.New(a.state, loc, func() {
		doCompute(ctx, a, p)
	})

	// Create Bubble Tea program
	p = tea.NewProgram(model, tea.WithAltScreen())

	// Start compute loop in background
	go runComputeLoop(ctx, a, p)

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// instant returns the configured instant, or now.
func (a *app) instant() time.Time {
	if !a.at.IsZero() {
		return a.at
	}
	return time.Now()
}

// compute loads the catalog, enriches it and commits the result. It
// returns false when the result was superseded by a newer computation.
func (a *app) compute(ctx context.Context) (bool, error) {
	obs := a.cfg.Observer()
	at := a.instant()
	mask := a.cfg.Mask()
	req := a.state.Begin(obs, at, mask)
	night := a.engine.Night(obs, at)

	entries, err := a.repo.Entries(ctx)
	if err != nil {
		return a.state.Commit(req, nil, night, err), err
	}

	enriched, err := a.engine.Compute(ctx, entries, obs, at, mask)
	return a.state.Commit(req, enriched, night, err), err
}

func runComputeLoop(ctx context.Context, a *app, p *tea.Program) {
	// Do initial computation immediately
	doCompute(ctx, a, p)

	ticker := time.NewTicker(a.state.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Compute loop shutting down")
			return
		case <-ticker.C:
			doCompute(ctx, a, p)
		}
	}
}

func doCompute(ctx context.Context, a *app, p *tea.Program) {
	a.logger.Debug("Computing visibility...")

	committed, err := a.compute(ctx)
	if err != nil {
		a.logger.Error("Computation failed: %v", err)
		p.Send(ui.ErrorMsg{Error: err})
		return
	}
	if !committed {
		a.logger.Debug("Computation superseded by a newer one")
		return
	}

	snap := a.state.Snapshot()
	a.logger.Debug("Computation complete: %d entries in %v", len(snap.Entries), snap.ComputeDuration)
	p.Send(ui.DataUpdateMsg{Snapshot: snap})
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, a *app) {
	outputOnce := func() error {
		if _, err := a.compute(ctx); err != nil {
			return err
		}
		snap := a.state.Snapshot()

		// Export JSON if requested
		if snapshotPath != "" {
			export := catalog.ExportSnapshot(snap.Entries, snap.Observer, snap.Instant, snap.Night)
			if err := writeTo(snapshotPath, export.WriteJSON); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
		}

		// Print summary table if requested
		if summaryMode {
			catalog.WriteSummaryTable(os.Stdout, snap.Entries, snap.Observer, snap.Instant, a.loc)
		}

		// Session windows
		if scheduleMode {
			if summaryMode {
				fmt.Println()
			}
			if err := writeSchedule(snap, a.loc); err != nil {
				return err
			}
		}

		return nil
	}

	// Single run
	if watchInterval == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if snapshotPath != "-" {
				fmt.Println() // Blank line between outputs (except JSON on stdout)
			}
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// writeSchedule lays tonight's visible objects end to end from sunset.
func writeSchedule(snap state.Snapshot, loc *time.Location) error {
	visible := catalog.Filter(snap.Entries, catalog.FilterOptions{})
	targets := make([]schedule.Target, 0, len(visible))
	for _, e := range visible {
		if !e.Enriched {
			continue
		}
		t := schedule.TargetFromEntry(e)
		t.Exposures = []schedule.ExposureGroup{{Count: frames, ExposureSec: exposureSec}}
		targets = append(targets, t)
	}
	schedule.SortByMeridian(targets)

	start := astro.HourOfDay(snap.Night.Sunset, loc)
	windows := schedule.Windows(start, targets)
	schedule.WriteWindows(os.Stdout, targets, windows)

	total := 0.0
	for _, t := range targets {
		total += t.Duration()
	}
	avail := schedule.MaxDuration(start, astro.HourOfDay(snap.Night.Sunrise, loc))
	fmt.Printf("\nTotal %.2fh of %.2fh available\n", total, avail)
	if total > avail {
		fmt.Println("Warning: session runs past sunrise")
	}

	if planPath == "" {
		return nil
	}
	plan, err := schedule.BuildPlan(start, targets)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	if err := writeTo(planPath, plan.WriteJSON); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// writeTo calls write with stdout for "-" or a created file otherwise.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
