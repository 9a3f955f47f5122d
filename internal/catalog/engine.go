package catalog

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/logging"
	"github.com/litescript/ls-skyplan/internal/metrics"
)

// failedAltitude is reported when the current position cannot be
// transformed, so the entry sorts below everything that can.
const failedAltitude = -100.0

// statusSkipped labels sentinel entries in the status metric.
const statusSkipped = "skipped"

// Options configures an Engine.
type Options struct {
	Workers       int            // concurrent entries; 0 means GOMAXPROCS
	PaddingHours  int            // track padding on each side of the night
	CivilTwilight bool           // bracket the night at -6° instead of 0°
	Location      *time.Location // for track hour-of-day; nil means UTC
	Transform     astro.Transform
	Descriptions  Descriptions
	Logger        *logging.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		PaddingHours: astro.DefaultPadding,
		Location:     time.UTC,
		Transform:    astro.Horizontal,
	}
}

// Engine enriches catalog entries for an observer and instant. An Engine
// holds no astronomical state and may be shared between goroutines.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.PaddingHours < 0 {
		opts.PaddingHours = 0
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Transform == nil {
		opts.Transform = astro.Horizontal
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Engine{opts: opts}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// sky holds the per-call values shared by every entry.
type sky struct {
	obs     astro.Observer
	at      time.Time
	mask    astro.HorizonMask
	night   astro.Night
	moonRA  float64
	moonDec float64
}

// Compute returns one Enriched per entry, in input order. Entries are
// processed concurrently. The only error is cancellation of ctx, in which
// case no results are returned.
func (e *Engine) Compute(ctx context.Context, entries []Entry, obs astro.Observer, at time.Time, mask astro.HorizonMask) ([]Enriched, error) {
	start := time.Now()

	s := sky{
		obs:   obs,
		at:    at,
		mask:  mask,
		night: e.night(obs, at),
	}
	s.moonRA, s.moonDec, _ = astro.MoonTopocentric(obs, at)

	out := make([]Enriched, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = e.enrich(entries[i], &s)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.record(out, time.Since(start))
	return out, nil
}

// Enrich computes a single entry. It is Compute without the fan-out.
func (e *Engine) Enrich(entry Entry, obs astro.Observer, at time.Time, mask astro.HorizonMask) Enriched {
	s := sky{obs: obs, at: at, mask: mask, night: e.night(obs, at)}
	s.moonRA, s.moonDec, _ = astro.MoonTopocentric(obs, at)
	return e.enrich(entry, &s)
}

func (e *Engine) enrich(entry Entry, s *sky) Enriched {
	en := Enriched{Entry: entry}

	body := entry.Body
	if entry.Dynamic {
		if body == astro.BodyNone {
			body, _ = astro.ParseBody(entry.Name)
		}
		e.resolve(&en, body, s)
	}

	en.Description = e.opts.Descriptions.Lookup(entry.Name)

	if !en.HasPosition() {
		return en
	}

	raDeg, decDeg := en.RADeg(), en.DecDeg

	az, alt, err := e.opts.Transform(raDeg, decDeg, s.obs, s.at)
	if err != nil {
		az, alt = 0, failedAltitude
	}
	en.AzimuthDeg = az
	en.AltitudeDeg = alt
	en.CurrentStatus = astro.Classify(alt, az, s.mask)

	events := astro.SearchRiseSet(s.obs, s.at, raDeg, decDeg)
	en.Rise = events.Rise
	en.Set = events.Set
	en.Meridian = events.Meridian

	en.MoonSeparationDeg = astro.AngularSeparation(raDeg, decDeg, s.moonRA, s.moonDec)
	en.SunSeparationDeg = astro.SunSeparation(raDeg, decDeg, s.at)

	if body == astro.BodyMoon {
		en.IlluminationPct, _ = astro.MoonIllumination(s.obs, s.at)
		en.MoonImage = astro.MoonImageIndex(astro.MoonPhaseLongitude(s.at))
		en.Image = fmt.Sprintf("moon%d.png", en.MoonImage)
	}

	en.Track = e.track(raDeg, decDeg, s)
	en.VisibleSamples = en.Track.VisibleSamples()
	if len(en.Track.Samples) > 0 {
		en.Status = en.Track.Status()
	} else {
		en.Status = en.CurrentStatus
	}

	en.Enriched = true
	return en
}

// resolve rewrites a dynamic entry's coordinates for the instant. An
// unknown body keeps whatever coordinates the entry already had.
func (e *Engine) resolve(en *Enriched, body astro.Body, s *sky) {
	ra, dec, err := astro.BodyPosition(body, s.obs, s.at)
	if err != nil {
		e.opts.Logger.Warn("cannot resolve dynamic entry %q: %v", en.Name, err)
		metrics.UnknownBodies.WithLabelValues(en.Name).Inc()
		return
	}
	en.RAHours = astro.DegreesToHours(ra)
	en.DecDeg = dec
}

func (e *Engine) record(out []Enriched, elapsed time.Duration) {
	statuses := make(map[string]int)
	skipped := 0
	for i := range out {
		if !out[i].Enriched {
			statuses[statusSkipped]++
			continue
		}
		statuses[string(out[i].Status)]++
		skipped += out[i].Track.Skipped
	}

	metrics.RecordEnrichment(elapsed, statuses)
	if skipped > 0 {
		metrics.SkippedSamples.Add(float64(skipped))
		e.opts.Logger.Debug("dropped %d track samples after failed transforms", skipped)
	}
	e.opts.Logger.Debug("enriched %d entries in %v", len(out), elapsed)
}
