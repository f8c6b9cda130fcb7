package session

import "time"

// Clock источник времени и тикеров. В тестах подменяется ручными часами.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker отменяемый периодический таймер
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock часы на time.Now и time.Ticker
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
