package widgets

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// Playback is the media element the player drives.
type Playback interface {
	Play() error
	Pause()
	SetMuted(muted bool)
	Seek(seconds float64)
}

type ErrVideoUnavailable struct {
	Exercise string
}

func (e *ErrVideoUnavailable) Error() string {
	return fmt.Sprintf("Video not available for %s", e.Exercise)
}

// Player keeps the state of an exercise demo video. Commands go to the
// Playback, events come back from it.
type Player struct {
	exercise string
	src      string
	backend  Playback

	playing  bool
	muted    bool
	loading  bool
	current  float64
	duration float64
}

// NewPlayer fails with ErrVideoUnavailable when the exercise has no video.
// A nil backend gives a state only player.
func NewPlayer(exercise string, backend Playback) (*Player, error) {
	src, ok := VideoSrc(exercise)
	if !ok {
		return nil, &ErrVideoUnavailable{Exercise: exercise}
	}
	return &Player{
		exercise: exercise,
		src:      src,
		backend:  backend,
		loading:  true,
	}, nil
}

func IsVideoUnavailable(err error) bool {
	var unavailable *ErrVideoUnavailable
	return errors.As(err, &unavailable)
}

func (p *Player) Exercise() string { return p.exercise }
func (p *Player) Src() string { return p.src }
func (p *Player) Playing() bool { return p.playing }
func (p *Player) Muted() bool { return p.muted }
func (p *Player) Loading() bool { return p.loading }
func (p *Player) CurrentTime() float64 { return p.current }
func (p *Player) Duration() float64 { return p.duration }

// Progress is the played fraction, 0 while the duration is unknown.
func (p *Player) Progress() float64 {
	if p.duration <= 0 {
		return 0
	}
	return math.Min(p.current/p.duration, 1)
}

func (p *Player) TogglePlay() {
	if p.playing {
		if p.backend != nil {
			p.backend.Pause()
		}
		p.playing = false
		return
	}
	if p.backend != nil {
		if err := p.backend.Play(); err != nil {
			log.Warnf("play %s: %s", p.src, err)
			return
		}
	}
	p.playing = true
}

func (p *Player) ToggleMute() {
	p.muted = !p.muted
	if p.backend != nil {
		p.backend.SetMuted(p.muted)
	}
}

// SeekFraction jumps to fraction (clamped to [0,1]) of the duration.
func (p *Player) SeekFraction(fraction float64) {
	if math.IsNaN(fraction) {
		return
	}
	fraction = math.Max(0, math.Min(1, fraction))
	p.seek(fraction * p.duration)
}

// Restart rewinds to the beginning without changing play state.
func (p *Player) Restart() {
	p.seek(0)
}

func (p *Player) seek(t float64) {
	if p.backend != nil {
		p.backend.Seek(t)
	}
	p.current = t
}

func (p *Player) MetadataLoaded(duration float64) {
	p.duration = duration
	p.loading = false
}

func (p *Player) TimeUpdate(t float64) {
	p.current = t
}

func (p *Player) Ended() {
	p.playing = false
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	mins := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", mins, secs)
}
