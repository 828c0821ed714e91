package common

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Clock is the external monotonic clock every phase comparison in the
// protocol runs against. All stage boundaries are absolute timestamps, so the
// clock only ever needs to answer "what time is it now".
type Clock interface {
	Now() time.Time
}

// LocalClock reads the operating system clock.
type LocalClock struct{}

func (LocalClock) Now() time.Time {
	return time.Now()
}

// NTPClock applies an offset measured once against an NTP server to the
// operating system clock. The offset is resolved lazily on first use; if the
// query fails the local clock is used as-is.
type NTPClock struct {
	Server string

	once   sync.Once
	offset time.Duration
}

func NewNTPClock(server string) *NTPClock {
	return &NTPClock{Server: server}
}

func (c *NTPClock) Now() time.Time {
	c.once.Do(func() {
		resp, err := ntp.Query(c.Server)
		if err != nil {
			log.Warn("ntp query failed; falling back to local clock", "server", c.Server, "err", err)
			return
		}
		c.offset = resp.ClockOffset
	})

	return time.Now().Add(c.offset)
}

// ManualClock only moves when told to; used by tests to cross commit and
// reveal stage boundaries deterministically.
type ManualClock struct {
	sync.RWMutex
	current time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{current: t}
}

func (c *ManualClock) Now() time.Time {
	c.RLock()
	defer c.RUnlock()

	return c.current
}

func (c *ManualClock) Set(t time.Time) {
	c.Lock()
	defer c.Unlock()

	c.current = t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.Lock()
	defer c.Unlock()

	c.current = c.current.Add(d)
}
