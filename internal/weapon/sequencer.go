package weapon

import "time"

// SequenceEnd describes why a fire sequence terminated.
type SequenceEnd string

const (
	EndComplete SequenceEnd = "complete"
	EndEmpty    SequenceEnd = "empty"
	EndReleased SequenceEnd = "released"
	EndSafe     SequenceEnd = "safe"
)

// SequencerHooks is the capability object the sequencer acts through. It
// keeps the sequencer decoupled from the concrete weapon type: it can only
// attempt a fire cycle, sample the trigger, flag the firing state, and
// request the two audible/visible effects it owns.
type SequencerHooks struct {
	TryFire     func() bool
	TriggerHeld func() bool
	SetFiring   func(firing bool)
	EmptySound  func()
	TrailEffect func()
}

type seqState int

const (
	seqIdle seqState = iota
	seqSuspended
)

// Sequencer issues a cadence of fire attempts for one trigger pull. It is
// a cooperative task polled by the tick loop: between shots it suspends
// itself by recording a resume time instead of blocking. One instance is
// created per trigger-press edge; only one may be active per weapon.
type Sequencer struct {
	mode      FireMode
	fireDelay time.Duration
	hooks     SequencerHooks

	running    bool
	state      seqState
	shotsLeft  int // remaining shots in the burst, Burst mode only
	shotsFired int
	resumeAt   time.Time
	end        SequenceEnd
}

// NewSequencer creates a sequencer for one trigger pull in the given mode.
// burstCount only applies to ModeBurst; fireDelay is 60/rateRPM.
func NewSequencer(mode FireMode, burstCount int, fireDelay time.Duration, hooks SequencerHooks) *Sequencer {
	return &Sequencer{
		mode:      mode,
		fireDelay: fireDelay,
		hooks:     hooks,
		shotsLeft: burstCount,
	}
}

// Start begins the sequence. Safe mode signals the empty click and ends
// immediately; the other modes attempt the first shot right away.
func (s *Sequencer) Start(now time.Time) {
	s.running = true
	s.setFiring(true)

	if s.mode == ModeSafe {
		s.emptySound()
		s.finish(EndSafe)
		return
	}
	s.attemptShot(now)
}

// Step resumes a suspended sequence when its delay has elapsed. It returns
// true while the sequence is still active. Callers invoke Step once per
// tick after the mechanical reconciliation pass, so each fire attempt
// observes same-tick lock/chamber state.
func (s *Sequencer) Step(now time.Time) bool {
	if !s.running {
		return false
	}
	if s.state != seqSuspended || now.Before(s.resumeAt) {
		return true
	}
	s.state = seqIdle

	// Second trail of the completed cycle.
	s.trailEffect()

	switch s.mode {
	case ModeSingle:
		s.finish(EndComplete)
	case ModeBurst:
		if s.shotsLeft > 0 {
			s.attemptShot(now)
		} else {
			s.finish(EndComplete)
		}
	case ModeAuto:
		if s.hooks.TriggerHeld != nil && s.hooks.TriggerHeld() {
			s.attemptShot(now)
		} else {
			s.finish(EndReleased)
		}
	default:
		s.finish(EndComplete)
	}
	return s.running
}

// attemptShot runs one fire cycle: a fire attempt, then the first trail
// effect and a timed suspension on success, or the empty click and
// termination on failure.
func (s *Sequencer) attemptShot(now time.Time) {
	if s.hooks.TryFire == nil || !s.hooks.TryFire() {
		s.emptySound()
		s.finish(EndEmpty)
		return
	}
	s.shotsFired++
	if s.mode == ModeBurst {
		s.shotsLeft--
	}
	s.trailEffect()
	s.resumeAt = now.Add(s.fireDelay)
	s.state = seqSuspended
}

func (s *Sequencer) finish(end SequenceEnd) {
	s.running = false
	s.end = end
	s.setFiring(false)
}

// Running reports whether the sequence is still active.
func (s *Sequencer) Running() bool { return s.running }

// Mode returns the fire mode this sequence runs in.
func (s *Sequencer) Mode() FireMode { return s.mode }

// ShotsFired returns the number of successful fire cycles so far.
func (s *Sequencer) ShotsFired() int { return s.shotsFired }

// EndReason returns why the sequence terminated; empty while running.
func (s *Sequencer) EndReason() SequenceEnd { return s.end }

func (s *Sequencer) setFiring(f bool) {
	if s.hooks.SetFiring != nil {
		s.hooks.SetFiring(f)
	}
}

func (s *Sequencer) emptySound() {
	if s.hooks.EmptySound != nil {
		s.hooks.EmptySound()
	}
}

func (s *Sequencer) trailEffect() {
	if s.hooks.TrailEffect != nil {
		s.hooks.TrailEffect()
	}
}
