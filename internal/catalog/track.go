package catalog

import (
	"time"

	"github.com/litescript/ls-skyplan/internal/astro"
)

// night returns the sunset to sunrise bracket the tracks are anchored to.
func (e *Engine) night(obs astro.Observer, at time.Time) astro.Night {
	return astro.NightBracket(obs, at, e.opts.CivilTwilight)
}

func (e *Engine) track(raDeg, decDeg float64, s *sky) astro.Track {
	return astro.SampleTrack(astro.TrackRequest{
		Observer:     s.obs,
		Start:        s.night.Sunset,
		End:          s.night.Sunrise,
		RADeg:        raDeg,
		DecDeg:       decDeg,
		PaddingHours: e.opts.PaddingHours,
		Mask:         s.mask,
		Location:     e.opts.Location,
		Transform:    e.opts.Transform,
	})
}

// Night returns the observing night the engine anchors tracks to.
func (e *Engine) Night(obs astro.Observer, at time.Time) astro.Night {
	return e.night(obs, at)
}
