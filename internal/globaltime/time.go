package globaltime

import (
	"sync"
	"time"
)

// ReferenceZone is the timezone all day-level decisions are made in.
const ReferenceZone = "America/Chicago"

var (
	mu      sync.RWMutex
	nowFunc = time.Now

	zoneOnce sync.Once
	zone     *time.Location
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Reference returns the reference location, falling back to UTC if the
// zone database is unavailable.
func Reference() *time.Location {
	zoneOnce.Do(func() {
		loc, err := time.LoadLocation(ReferenceZone)
		if err != nil {
			loc = time.UTC
		}
		zone = loc
	})
	return zone
}

// Today returns the current calendar day at midnight in the reference zone.
func Today() time.Time {
	now := Now().In(Reference())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Reference())
}

func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
