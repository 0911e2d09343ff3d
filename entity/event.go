package entity

import "time"

// Event is owned by the events collaborator; the engine reads it to make
// capacity decisions and never writes to it outside of setup.
type Event struct {
	ID          string    `json:"event_id" db:"event_id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	OrganizerID string    `json:"organizer_id" db:"organizer_id"`
	Title       string    `json:"title" db:"title"`
	Date        time.Time `json:"date" db:"date"`
	Capacity    int       `json:"capacity" db:"capacity"`
}

// CapacityCounts is derived from committed booking rows for one
// (event, tenant) pair. It is recomputed on every use, never cached.
type CapacityCounts struct {
	Confirmed  int `json:"confirmed"`
	Waitlisted int `json:"waitlisted"`
	Canceled   int `json:"canceled"`
}

// EventStats is the organizer-facing view of an event's booking load.
type EventStats struct {
	Capacity         int `json:"capacity"`
	Confirmed        int `json:"confirmed"`
	Waitlisted       int `json:"waitlisted"`
	Canceled         int `json:"canceled"`
	Available        int `json:"available"`
	PercentageFilled int `json:"percentage_filled"`
}

func NewEventStats(capacity int, counts CapacityCounts) EventStats {
	available := capacity - counts.Confirmed
	if available < 0 {
		available = 0
	}

	filled := 0
	if capacity > 0 {
		filled = int(float64(counts.Confirmed)/float64(capacity)*100 + 0.5)
	}

	return EventStats{
		Capacity:         capacity,
		Confirmed:        counts.Confirmed,
		Waitlisted:       counts.Waitlisted,
		Canceled:         counts.Canceled,
		Available:        available,
		PercentageFilled: filled,
	}
}
