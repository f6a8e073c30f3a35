package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmc5391/tabletoptracker/models"
)

type scheduleServiceFixture struct {
	svc       ScheduleService
	eventRepo *fakeEventRepo
	matchRepo *fakeMatchRepo
	hub       *fakeHub
}

func newScheduleServiceFixture() *scheduleServiceFixture {
	f := &scheduleServiceFixture{
		eventRepo: newFakeEventRepo(),
		matchRepo: newFakeMatchRepo(),
		hub:       &fakeHub{},
	}
	f.svc = NewScheduleService(fakeTxManager{}, f.eventRepo, f.matchRepo, f.hub)
	return f
}

func (f *scheduleServiceFixture) newEvent(t *testing.T, adminID int, playerIDs []int) int {
	t.Helper()
	event := &models.Event{Name: "League", StartDate: time.Now()}
	require.NoError(t, f.eventRepo.Create(context.Background(), nil, event))
	f.eventRepo.knowUser(adminID)
	f.eventRepo.knowUser(playerIDs...)
	require.NoError(t, f.eventRepo.AddAdmin(context.Background(), nil, event.ID, adminID))
	for _, id := range playerIDs {
		require.NoError(t, f.eventRepo.AddPlayer(context.Background(), nil, event.ID, id))
	}
	return event.ID
}

func TestGenerateRoundRobin_CreatesAllMatches(t *testing.T) {
	f := newScheduleServiceFixture()
	eventID := f.newEvent(t, 1, []int{10, 11, 12, 13})

	matches, err := f.svc.GenerateRoundRobin(context.Background(), eventID, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 6)

	for _, m := range matches {
		assert.Equal(t, eventID, m.EventID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.NotZero(t, m.ID)
		assert.GreaterOrEqual(t, m.Round, 1)
		assert.LessOrEqual(t, m.Round, 3)
	}

	count, err := f.matchRepo.CountByEvent(context.Background(), nil, eventID)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	require.NotEmpty(t, f.hub.messages)
	assert.Equal(t, "SCHEDULE_GENERATED", f.hub.messages[0].Type)
}

func TestGenerateRoundRobin_RequiresAdmin(t *testing.T) {
	f := newScheduleServiceFixture()
	eventID := f.newEvent(t, 1, []int{10, 11})

	_, err := f.svc.GenerateRoundRobin(context.Background(), eventID, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GenerateRoundRobin(context.Background(), eventID, 99)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGenerateRoundRobin_UnknownEvent(t *testing.T) {
	f := newScheduleServiceFixture()
	_, err := f.svc.GenerateRoundRobin(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGenerateRoundRobin_TooFewPlayers(t *testing.T) {
	f := newScheduleServiceFixture()

	eventID := f.newEvent(t, 1, nil)
	_, err := f.svc.GenerateRoundRobin(context.Background(), eventID, 1)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	soloEventID := f.newEvent(t, 1, []int{10})
	_, err = f.svc.GenerateRoundRobin(context.Background(), soloEventID, 1)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestGenerateRoundRobin_RefusesWhenMatchesExist(t *testing.T) {
	f := newScheduleServiceFixture()
	eventID := f.newEvent(t, 1, []int{10, 11, 12})

	first, err := f.svc.GenerateRoundRobin(context.Background(), eventID, 1)
	require.NoError(t, err)
	require.Len(t, first, 3)

	_, err = f.svc.GenerateRoundRobin(context.Background(), eventID, 1)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)

	// Nothing was added by the rejected call.
	count, err := f.matchRepo.CountByEvent(context.Background(), nil, eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGenerateRoundRobin_RefusesOverManualMatch(t *testing.T) {
	f := newScheduleServiceFixture()
	eventID := f.newEvent(t, 1, []int{10, 11})
	require.NoError(t, f.matchRepo.Create(context.Background(), nil, &models.Match{
		EventID: eventID, Round: 1, Status: models.MatchStatusScheduled, Player1ID: 10, Player2ID: 11,
	}))

	_, err := f.svc.GenerateRoundRobin(context.Background(), eventID, 1)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)
}
