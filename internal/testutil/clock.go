package testutil

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/meshcore/mesh/pkg/types"
)

// Clock is a fake, advanceable interfaces.RelTimeProvider backed by
// benbjohnson/clock, letting tests drive time deterministically instead
// of sleeping.
type Clock struct {
	mock  *clock.Mock
	start int64
}

// NewClock builds a Clock whose Now() starts at RelTime(0).
func NewClock() *Clock {
	m := clock.NewMock()
	return &Clock{mock: m, start: m.Now().UnixMilli()}
}

// Now implements interfaces.RelTimeProvider.
func (c *Clock) Now() types.RelTime {
	return types.RelTime(c.mock.Now().UnixMilli() - c.start)
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mock.Add(d)
}
