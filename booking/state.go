package booking

import (
	"bookings/entity"
)

// transitions lists the legal next states per current state. canceled is
// terminal.
var transitions = map[string][]string{
	entity.StatusConfirmed:  {entity.StatusCanceled},
	entity.StatusWaitlisted: {entity.StatusConfirmed, entity.StatusCanceled},
	entity.StatusCanceled:   {},
}

// ValidateTransition checks the transition table. It does not look at
// capacity; see ValidateConfirm for that.
func ValidateTransition(from, to string) error {
	for _, allowed := range transitions[from] {
		if to == allowed {
			return nil
		}
	}
	return E(KindInvalidTransition, "invalid status transition from %s to %s", from, to)
}

// DecideStatus picks the initial status for a new booking. Only confirmed
// bookings count against capacity; waitlisted ones never do.
func DecideStatus(confirmed, capacity int) string {
	if confirmed < capacity {
		return entity.StatusConfirmed
	}
	return entity.StatusWaitlisted
}

// ValidateConfirm re-checks capacity for a transition into confirmed. A
// waitlist promotion is exempt: the promoting transaction has already
// verified capacity against current counts.
func ValidateConfirm(promotion bool, confirmed, capacity int) error {
	if promotion {
		return nil
	}
	if confirmed >= capacity {
		return E(KindCapacityExceeded, "event is at full capacity (%d/%d)", confirmed, capacity)
	}
	return nil
}

// Patch is a requested change to an existing booking. Nil fields are left
// untouched.
type Patch struct {
	EventID  *string
	UserID   *string
	TenantID *string
	Status   *string
}

// ValidateUpdate rejects changes to immutable fields before the status
// transition is evaluated.
func ValidateUpdate(b entity.Booking, p Patch) error {
	if p.EventID != nil && *p.EventID != b.EventID {
		return E(KindImmutableFieldViolation, "cannot change event for existing booking")
	}
	if p.UserID != nil && *p.UserID != b.UserID {
		return E(KindImmutableFieldViolation, "cannot change user for existing booking")
	}
	if p.TenantID != nil && *p.TenantID != b.TenantID {
		return E(KindImmutableFieldViolation, "cannot change tenant for existing booking")
	}
	if p.Status != nil && *p.Status != b.Status {
		return ValidateTransition(b.Status, *p.Status)
	}
	return nil
}
