package booking_test

import (
	"testing"

	"bookings/booking"
	"bookings/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	require.NoError(t, booking.ValidateTransition(entity.StatusConfirmed, entity.StatusCanceled))
	require.NoError(t, booking.ValidateTransition(entity.StatusWaitlisted, entity.StatusConfirmed))
	require.NoError(t, booking.ValidateTransition(entity.StatusWaitlisted, entity.StatusCanceled))

	err := booking.ValidateTransition(entity.StatusConfirmed, entity.StatusWaitlisted)
	require.Error(t, err)
	assert.Equal(t, booking.KindInvalidTransition, booking.KindOf(err))
	assert.Contains(t, err.Error(), "confirmed")
	assert.Contains(t, err.Error(), "waitlisted")
}

func TestValidateTransitionCanceledIsTerminal(t *testing.T) {
	for _, to := range []string{entity.StatusConfirmed, entity.StatusWaitlisted, entity.StatusCanceled} {
		err := booking.ValidateTransition(entity.StatusCanceled, to)
		require.Error(t, err, "canceled -> %s should be rejected", to)
		assert.Equal(t, booking.KindInvalidTransition, booking.KindOf(err))
	}
}

func TestDecideStatus(t *testing.T) {
	assert.Equal(t, entity.StatusConfirmed, booking.DecideStatus(0, 1))
	assert.Equal(t, entity.StatusConfirmed, booking.DecideStatus(4, 5))
	assert.Equal(t, entity.StatusWaitlisted, booking.DecideStatus(5, 5))
	assert.Equal(t, entity.StatusWaitlisted, booking.DecideStatus(6, 5))
}

func TestValidateConfirm(t *testing.T) {
	require.NoError(t, booking.ValidateConfirm(false, 2, 3))

	err := booking.ValidateConfirm(false, 3, 3)
	require.Error(t, err)
	assert.Equal(t, booking.KindCapacityExceeded, booking.KindOf(err))

	// A promotion already verified capacity in its own transaction.
	require.NoError(t, booking.ValidateConfirm(true, 3, 3))
}

func TestValidateUpdateImmutableFields(t *testing.T) {
	b := entity.Booking{
		ID:       "b1",
		EventID:  "e1",
		UserID:   "u1",
		TenantID: "t1",
		Status:   entity.StatusConfirmed,
	}

	otherEvent := "e2"
	err := booking.ValidateUpdate(b, booking.Patch{EventID: &otherEvent})
	require.Error(t, err)
	assert.Equal(t, booking.KindImmutableFieldViolation, booking.KindOf(err))

	otherUser := "u2"
	err = booking.ValidateUpdate(b, booking.Patch{UserID: &otherUser})
	require.Error(t, err)
	assert.Equal(t, booking.KindImmutableFieldViolation, booking.KindOf(err))

	otherTenant := "t2"
	err = booking.ValidateUpdate(b, booking.Patch{TenantID: &otherTenant})
	require.Error(t, err)
	assert.Equal(t, booking.KindImmutableFieldViolation, booking.KindOf(err))

	// Re-asserting the current values is not a violation.
	sameEvent, sameUser := "e1", "u1"
	require.NoError(t, booking.ValidateUpdate(b, booking.Patch{EventID: &sameEvent, UserID: &sameUser}))
}

func TestValidateUpdateImmutableCheckedBeforeTransition(t *testing.T) {
	b := entity.Booking{
		ID:       "b1",
		EventID:  "e1",
		UserID:   "u1",
		TenantID: "t1",
		Status:   entity.StatusCanceled,
	}

	// Both violations present: the immutable-field one wins.
	otherEvent := "e2"
	confirmed := entity.StatusConfirmed
	err := booking.ValidateUpdate(b, booking.Patch{EventID: &otherEvent, Status: &confirmed})
	require.Error(t, err)
	assert.Equal(t, booking.KindImmutableFieldViolation, booking.KindOf(err))
}

func TestValidateUpdateStatusTransition(t *testing.T) {
	b := entity.Booking{ID: "b1", EventID: "e1", UserID: "u1", TenantID: "t1", Status: entity.StatusWaitlisted}

	confirmed := entity.StatusConfirmed
	require.NoError(t, booking.ValidateUpdate(b, booking.Patch{Status: &confirmed}))

	b.Status = entity.StatusCanceled
	err := booking.ValidateUpdate(b, booking.Patch{Status: &confirmed})
	require.Error(t, err)
	assert.Equal(t, booking.KindInvalidTransition, booking.KindOf(err))
}
