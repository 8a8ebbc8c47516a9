package difficulty

import (
	"math"
	"sync"
	"time"
)

const (
	// recentWindow is how long recorded pops are retained for rate tracking.
	recentWindow = 30 * time.Second
	// rateWindow is the sliding sub-window used to compute the recent pop rate.
	rateWindow = 10 * time.Second
	// adjustInterval is the accumulated play time, in seconds, between target
	// re-evaluations.
	adjustInterval = 5.0
	// smoothingRate is the per-second blend factor easing current multipliers
	// toward their targets (~2s time constant).
	smoothingRate = 0.5

	rubberBandSeconds = 10.0
	rubberBandGap     = 0.2
)

// DefaultSlots are the player slots a controller tracks when none are given.
var DefaultSlots = []int{1, 2}

// Difficulty is the live multiplier pair for one player slot. Speed scales
// spawn pacing (higher = harder), Tolerance scales balloon size and hit
// radius (higher = easier).
type Difficulty struct {
	Speed     float64
	Tolerance float64
}

// Adjustment is a snapshot of one periodic target re-evaluation for a slot.
type Adjustment struct {
	Slot            int
	RecentRate      float64
	SuccessRate     float64
	IdleSeconds     float64
	TargetSpeed     float64
	TargetTolerance float64
}

// Stats is a read-only snapshot of a slot's tracked performance.
type Stats struct {
	Total       int
	OnTarget    int
	OffTarget   int
	SuccessRate float64
	IdleSeconds float64
}

type playerMetrics struct {
	recentPops      []time.Time
	total           int
	onTarget        int
	offTarget       int
	lastInteraction time.Time
	idleSeconds     float64
	successRate     float64

	currentSpeed     float64
	currentTolerance float64
	targetSpeed      float64
	targetTolerance  float64
}

type rubberBand struct {
	active    bool
	remaining float64
}

// Controller tracks per-slot performance and keeps a smoothly interpolated
// difficulty multiplier pair for each slot. Unknown slots are silent no-ops
// on writes and neutral defaults on reads; no operation errors or panics.
//
// One controller belongs to one game session. All state is guarded by a
// single mutex since pops arrive from request handlers while Update runs on
// the round tick loop.
type Controller struct {
	mu          sync.Mutex
	profile     Profile
	players     map[int]*playerMetrics
	bands       map[int]*rubberBand
	adjustTimer float64
	onAdjust    func(Adjustment)

	now func() time.Time // swapped out in tests
}

// New creates a controller tuned by profile, tracking the given player slots
// (DefaultSlots when none are given).
func New(profile Profile, slots ...int) *Controller {
	if len(slots) == 0 {
		slots = DefaultSlots
	}
	c := &Controller{
		profile: profile,
		players: make(map[int]*playerMetrics, len(slots)),
		bands:   make(map[int]*rubberBand, len(slots)),
		now:     time.Now,
	}
	for _, slot := range slots {
		c.players[slot] = nil
		c.bands[slot] = nil
	}
	c.reset()
	return c
}

// ProfileName returns the name of the active tuning profile.
func (c *Controller) ProfileName() string {
	return c.profile.Name
}

// SetAdjustCallback registers fn to receive a snapshot after every periodic
// target re-evaluation. Call before the game starts ticking.
func (c *Controller) SetAdjustCallback(fn func(Adjustment)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdjust = fn
}

// RecordCompletion records a successful pop for slot. onTarget reports
// whether the balloon matched the player's current objective color. No-op
// for unknown slots.
func (c *Controller) RecordCompletion(slot int, onTarget bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[slot]
	if !ok {
		return
	}
	now := c.now()
	p.recentPops = append(p.recentPops, now)
	p.total++
	if onTarget {
		p.onTarget++
	} else {
		p.offTarget++
	}
	p.lastInteraction = now
	p.idleSeconds = 0

	// Prune entries older than the retention window.
	cutoff := now.Add(-recentWindow)
	kept := p.recentPops[:0]
	for _, ts := range p.recentPops {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	p.recentPops = kept
}

// RecordInteraction marks slot as present and active without counting a pop.
// Used for hand-cursor movement so an engaged player is not treated as idle.
func (c *Controller) RecordInteraction(slot int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[slot]
	if !ok {
		return
	}
	p.lastInteraction = c.now()
	p.idleSeconds = 0
}

// Update advances the controller by dt seconds of play time: recomputes idle
// durations, re-evaluates targets every adjustInterval, eases the current
// multipliers toward their targets, and counts down active rubber bands.
// Called once per tick by the round loop.
func (c *Controller) Update(dt float64) {
	if dt <= 0 {
		return
	}

	c.mu.Lock()
	now := c.now()
	for _, p := range c.players {
		p.idleSeconds = now.Sub(p.lastInteraction).Seconds()
	}

	var adjusted []Adjustment
	c.adjustTimer += dt
	if c.adjustTimer >= adjustInterval {
		c.adjustTimer = 0
		for slot, p := range c.players {
			adjusted = append(adjusted, c.adjust(slot, p, now))
		}
	}

	// Clamped so a long frame hitch snaps to target instead of overshooting.
	blend := dt * smoothingRate
	if blend > 1 {
		blend = 1
	}
	for _, p := range c.players {
		p.currentSpeed += (p.targetSpeed - p.currentSpeed) * blend
		p.currentTolerance += (p.targetTolerance - p.currentTolerance) * blend
	}

	for _, b := range c.bands {
		if b.active {
			b.remaining -= dt
			if b.remaining <= 0 {
				b.active = false
				b.remaining = 0
			}
		}
	}
	fn := c.onAdjust
	c.mu.Unlock()

	if fn != nil {
		for _, a := range adjusted {
			fn(a)
		}
	}
}

// adjust recomputes a slot's target multipliers. Caller holds the mutex.
func (c *Controller) adjust(slot int, p *playerMetrics, now time.Time) Adjustment {
	cutoff := now.Add(-rateWindow)
	rate := 0.0
	for _, ts := range p.recentPops {
		if ts.After(cutoff) {
			rate++
		}
	}

	// Tracked for analytics; does not steer the branches below.
	attempts := p.onTarget + p.offTarget
	p.successRate = 0.5
	if attempts > 0 {
		p.successRate = float64(p.onTarget) / float64(attempts)
	}

	pr := c.profile
	speed, tolerance := 1.0, 1.0
	switch {
	case rate > pr.HighRateThreshold:
		over := rate - pr.HighRateThreshold
		speed = math.Min(1.0+over*pr.SpeedGainPerPop, pr.SpeedGainCap)
		tolerance = math.Max(1.0-over*pr.ToleranceLossPerPop, pr.ToleranceLossFloor)
	case rate < pr.LowRateThreshold:
		speed = pr.StrugglingSpeed
		tolerance = pr.StrugglingTolerance
	}
	if p.idleSeconds > pr.IdleSecondsThreshold {
		speed *= pr.IdleSpeedFactor
		tolerance *= pr.IdleToleranceFactor
	}
	p.targetSpeed = clamp(speed, pr.MinSpeed, pr.MaxSpeed)
	p.targetTolerance = clamp(tolerance, pr.MinTolerance, pr.MaxTolerance)

	return Adjustment{
		Slot:            slot,
		RecentRate:      rate,
		SuccessRate:     p.successRate,
		IdleSeconds:     p.idleSeconds,
		TargetSpeed:     p.targetSpeed,
		TargetTolerance: p.targetTolerance,
	}
}

// CheckRubberBand compares the slot-1 and slot-2 scores and, when the
// relative gap exceeds 20%, opens a 10-second bonus window for the trailing
// slot. Returns the trailing slot and true only on activation; an already
// open window is never re-triggered.
func (c *Controller) CheckRubberBand(score1, score2 int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	top := score1
	if score2 > top {
		top = score2
	}
	if top < 1 {
		top = 1
	}
	gap := math.Abs(float64(score1-score2)) / float64(top)
	if gap <= rubberBandGap {
		return 0, false
	}

	trailing := 1
	if score1 > score2 {
		trailing = 2
	}
	b, ok := c.bands[trailing]
	if !ok || b.active {
		return 0, false
	}
	b.active = true
	b.remaining = rubberBandSeconds
	return trailing, true
}

// PlayerDifficulty returns the current multiplier pair for slot, or neutral
// {1, 1} for unknown slots.
func (c *Controller) PlayerDifficulty(slot int) Difficulty {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[slot]
	if !ok {
		return Difficulty{Speed: 1.0, Tolerance: 1.0}
	}
	return Difficulty{Speed: p.currentSpeed, Tolerance: p.currentTolerance}
}

// PlayerStats returns a snapshot of slot's counters, or zero values with the
// neutral success rate for unknown slots.
func (c *Controller) PlayerStats(slot int) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[slot]
	if !ok {
		return Stats{SuccessRate: 0.5}
	}
	return Stats{
		Total:       p.total,
		OnTarget:    p.onTarget,
		OffTarget:   p.offTarget,
		SuccessRate: p.successRate,
		IdleSeconds: p.idleSeconds,
	}
}

// RubberBandActive reports whether slot's bonus window is open. False for
// unknown slots.
func (c *Controller) RubberBandActive(slot int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bands[slot]
	return ok && b.active
}

// Reset returns every slot to construction-time state. The profile is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	now := c.now()
	for slot := range c.players {
		c.players[slot] = &playerMetrics{
			lastInteraction:  now,
			successRate:      0.5,
			currentSpeed:     1.0,
			currentTolerance: 1.0,
			targetSpeed:      1.0,
			targetTolerance:  1.0,
		}
	}
	for slot := range c.bands {
		c.bands[slot] = &rubberBand{}
	}
	c.adjustTimer = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
