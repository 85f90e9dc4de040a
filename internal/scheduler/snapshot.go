package scheduler

import (
	"sort"
	"time"
)

type TriggerInfo struct {
	Key    Key       `json:"key"`
	FireAt time.Time `json:"fire_at"`
	Next   time.Time `json:"next,omitzero"`
}

type Snapshot struct {
	Timezone         string        `json:"timezone"`
	WeeklyRegistered bool          `json:"weekly_registered"`
	NextWeekly       time.Time     `json:"next_weekly,omitzero"`
	Triggers         []TriggerInfo `json:"triggers"`
}

// Snapshot returns a point-in-time view of the registry for status
// reporting.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Timezone:         s.loc.String(),
		WeeklyRegistered: s.weeklyID != 0,
		Triggers:         make([]TriggerInfo, 0, len(s.entries)),
	}
	if s.c != nil && s.weeklyID != 0 {
		snap.NextWeekly = s.c.Entry(s.weeklyID).Next
	}
	for _, e := range s.entries {
		it := TriggerInfo{Key: e.key, FireAt: e.fireAt}
		if s.c != nil && e.cronID != 0 {
			it.Next = s.c.Entry(e.cronID).Next
		}
		snap.Triggers = append(snap.Triggers, it)
	}
	sort.Slice(snap.Triggers, func(i, j int) bool {
		return snap.Triggers[i].FireAt.Before(snap.Triggers[j].FireAt)
	})
	return snap
}
