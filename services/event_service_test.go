package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmc5391/tabletoptracker/models"
)

type eventServiceFixture struct {
	svc       EventService
	eventRepo *fakeEventRepo
	userRepo  *fakeUserRepo
	matchRepo *fakeMatchRepo
	hub       *fakeHub
}

func newEventServiceFixture() *eventServiceFixture {
	f := &eventServiceFixture{
		eventRepo: newFakeEventRepo(),
		userRepo:  newFakeUserRepo(),
		matchRepo: newFakeMatchRepo(),
		hub:       &fakeHub{},
	}
	f.svc = NewEventService(fakeTxManager{}, f.eventRepo, f.userRepo, f.matchRepo, nil, f.hub)
	return f
}

// newEvent seeds an event with the given admin and player user ids.
func (f *eventServiceFixture) newEvent(t *testing.T, adminIDs, playerIDs []int) int {
	t.Helper()
	event := &models.Event{Name: "Test Event", StartDate: time.Now()}
	require.NoError(t, f.eventRepo.Create(context.Background(), nil, event))
	f.eventRepo.knowUser(adminIDs...)
	f.eventRepo.knowUser(playerIDs...)
	for _, id := range adminIDs {
		require.NoError(t, f.eventRepo.AddAdmin(context.Background(), nil, event.ID, id))
	}
	for _, id := range playerIDs {
		require.NoError(t, f.eventRepo.AddPlayer(context.Background(), nil, event.ID, id))
	}
	return event.ID
}

func TestCreateEvent_CreatorBecomesAdmin(t *testing.T) {
	f := newEventServiceFixture()
	creator := f.userRepo.add("Alice", "alice@example.com", "")
	f.eventRepo.knowUser(creator.ID)

	event, err := f.svc.CreateEvent(context.Background(), creator.ID, CreateEventInput{
		Name:      "Spring League",
		StartDate: time.Now(),
	})
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	role, err := f.svc.RoleOf(context.Background(), event.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventRoleAdmin, role)
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newEventServiceFixture()

	_, err := f.svc.CreateEvent(context.Background(), 1, CreateEventInput{Name: "   ", StartDate: time.Now()})
	assert.ErrorIs(t, err, ErrEventNameRequired)

	start := time.Now()
	end := start.Add(-24 * time.Hour)
	_, err = f.svc.CreateEvent(context.Background(), 1, CreateEventInput{Name: "X", StartDate: start, EndDate: &end})
	assert.ErrorIs(t, err, ErrEventInvalidDateRange)
}

func TestUpdateEvent_RequiresAdmin(t *testing.T) {
	f := newEventServiceFixture()
	eventID := f.newEvent(t, []int{1}, []int{2})

	name := "Renamed"
	_, err := f.svc.UpdateEvent(context.Background(), eventID, 2, UpdateEventInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.UpdateEvent(context.Background(), eventID, 1, UpdateEventInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateEvent_UnknownEventIsNotFound(t *testing.T) {
	f := newEventServiceFixture()
	name := "X"
	_, err := f.svc.UpdateEvent(context.Background(), 999, 1, UpdateEventInput{Name: &name})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestAddPlayer_DuplicateRejected(t *testing.T) {
	f := newEventServiceFixture()
	admin := f.userRepo.add("Admin", "admin@example.com", "")
	player := f.userRepo.add("Bob", "bob@example.com", "")
	eventID := f.newEvent(t, []int{admin.ID}, nil)
	f.eventRepo.knowUser(player.ID)

	added, err := f.svc.AddPlayer(context.Background(), eventID, admin.ID, "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, player.ID, added.ID)
	assert.Empty(t, added.PasswordHash)

	_, err = f.svc.AddPlayer(context.Background(), eventID, admin.ID, "bob@example.com")
	assert.ErrorIs(t, err, ErrDuplicateMember)
}

func TestAddPlayer_UnknownEmail(t *testing.T) {
	f := newEventServiceFixture()
	admin := f.userRepo.add("Admin", "admin@example.com", "")
	eventID := f.newEvent(t, []int{admin.ID}, nil)

	_, err := f.svc.AddPlayer(context.Background(), eventID, admin.ID, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddAdmin_PromotesByEmail(t *testing.T) {
	f := newEventServiceFixture()
	admin := f.userRepo.add("Admin", "admin@example.com", "")
	second := f.userRepo.add("Second", "second@example.com", "")
	eventID := f.newEvent(t, []int{admin.ID}, nil)
	f.eventRepo.knowUser(second.ID)

	_, err := f.svc.AddAdmin(context.Background(), eventID, admin.ID, "second@example.com")
	require.NoError(t, err)

	role, err := f.svc.RoleOf(context.Background(), eventID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventRoleAdmin, role)
}

func TestRemovePlayer_NotEnrolledIsNotFound(t *testing.T) {
	f := newEventServiceFixture()
	eventID := f.newEvent(t, []int{1}, []int{2})

	err := f.svc.RemovePlayer(context.Background(), eventID, 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.RemovePlayer(context.Background(), eventID, 1, 2))

	role, err := f.svc.RoleOf(context.Background(), eventID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.EventRoleNone, role)
}

func TestDeleteEvent_CascadesAndBroadcasts(t *testing.T) {
	f := newEventServiceFixture()
	eventID := f.newEvent(t, []int{1}, []int{2, 3})
	require.NoError(t, f.matchRepo.Create(context.Background(), nil, &models.Match{
		EventID: eventID, Round: 1, Status: models.MatchStatusScheduled, Player1ID: 2, Player2ID: 3,
	}))

	err := f.svc.DeleteEvent(context.Background(), eventID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.DeleteEvent(context.Background(), eventID, 1))

	_, err = f.svc.GetEvent(context.Background(), eventID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	count, err := f.matchRepo.CountByEvent(context.Background(), nil, eventID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NotEmpty(t, f.hub.messages)
	assert.Equal(t, "EVENT_DELETED", f.hub.messages[len(f.hub.messages)-1].Type)
}

func TestGetEvent_PopulatesRelations(t *testing.T) {
	f := newEventServiceFixture()
	eventID := f.newEvent(t, []int{1}, []int{2, 3})
	require.NoError(t, f.matchRepo.Create(context.Background(), nil, &models.Match{
		EventID: eventID, Round: 1, Status: models.MatchStatusScheduled, Player1ID: 2, Player2ID: 3,
	}))

	event, err := f.svc.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Len(t, event.Admins, 1)
	assert.Len(t, event.Players, 2)
	assert.Len(t, event.Matches, 1)
}
