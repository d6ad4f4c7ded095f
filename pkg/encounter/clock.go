package encounter

import "time"

// GameClock is the external game-time authority. The scheduler reads game
// minutes for cooldown bookkeeping and requests speed changes around a
// presented encounter; it never advances the clock itself.
type GameClock interface {
	// Minutes returns elapsed game minutes.
	Minutes() float64
	// Speed returns the current time-acceleration factor. 0 is paused.
	Speed() float64
	// SetSpeed requests a new time-acceleration factor.
	SetSpeed(speed float64)
}

// SimClock is a wall-clock-driven GameClock: game minutes accrue at
// rate × speed game minutes per wall second. It backs the service
// processes; hosts embedding the engine supply their own clock.
type SimClock struct {
	rate        float64
	speed       float64
	accumulated float64
	lastTick    time.Time
	now         func() time.Time
}

// NewSimClock creates a running clock at speed 1. rate is game minutes
// per wall second at speed 1.
func NewSimClock(rate float64) *SimClock {
	c := &SimClock{rate: rate, speed: 1, now: time.Now}
	c.lastTick = c.now()
	return c
}

func (c *SimClock) advance() {
	t := c.now()
	c.accumulated += t.Sub(c.lastTick).Seconds() * c.rate * c.speed
	c.lastTick = t
}

func (c *SimClock) Minutes() float64 {
	c.advance()
	return c.accumulated
}

func (c *SimClock) Speed() float64 {
	return c.speed
}

func (c *SimClock) SetSpeed(speed float64) {
	c.advance()
	if speed < 0 {
		speed = 0
	}
	c.speed = speed
}

// Restore rewinds or fast-forwards the clock to a persisted reading.
func (c *SimClock) Restore(minutes float64) {
	c.accumulated = minutes
	c.lastTick = c.now()
}
