// Package repository 状态变更记录仓储单元测试
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

func TestReservationEventRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationEventRepository(db)
	ctx := context.Background()

	first := &models.ReservationStatusEvent{
		ReservationID: "r-1",
		FromStatus:    models.ReservationStatusPending,
		ToStatus:      models.ReservationStatusConfirmed,
		Actor:         "admin@hotel.local",
		Outcome:       models.TransitionOutcomeCompleted,
		Steps: []models.StepRecord{
			{Name: "persist_status", State: "done"},
			{Name: "record_checkin", State: "done"},
		},
	}
	second := &models.ReservationStatusEvent{
		ReservationID: "r-1",
		FromStatus:    models.ReservationStatusConfirmed,
		ToStatus:      models.ReservationStatusCheckedIn,
		Outcome:       models.TransitionOutcomePartial,
		Steps: []models.StepRecord{
			{Name: "occupy_room", State: "failed", Error: "database is locked"},
		},
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.ReservationStatusEvent{
		ReservationID: "r-2", ToStatus: models.ReservationStatusCancelled, Outcome: models.TransitionOutcomeCompleted,
	}))

	events, err := repo.ListByReservation(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.ReservationStatusConfirmed, events[0].ToStatus)
	assert.Len(t, events[0].Steps, 2)
	assert.Equal(t, "database is locked", events[1].Steps[0].Error)
}
