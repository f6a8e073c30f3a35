package services

import (
	"context"
	"sort"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
)

// fakeTxManager runs the function directly, without a database. The exec
// passed through is nil; the fake repositories ignore it.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeHub struct {
	messages []LiveMessage
	rooms    []string
}

func (h *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	h.rooms = append(h.rooms, roomID)
	if msg, ok := message.(LiveMessage); ok {
		h.messages = append(h.messages, msg)
	}
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(name, email, passwordHash string) *models.User {
	user := &models.User{ID: r.nextID, Name: name, Email: email, PasswordHash: passwordHash}
	r.users[user.ID] = user
	r.nextID++
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type fakeEventRepo struct {
	events  map[int]*models.Event
	admins  map[int][]int
	players map[int][]int
	userIDs map[int]bool
	nextID  int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:  map[int]*models.Event{},
		admins:  map[int][]int{},
		players: map[int][]int{},
		userIDs: map[int]bool{},
		nextID:  1,
	}
}

func (r *fakeEventRepo) knowUser(userIDs ...int) {
	for _, id := range userIDs {
		r.userIDs[id] = true
	}
}

func (r *fakeEventRepo) Create(_ context.Context, _ repositories.SQLExecutor, event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) ListByUser(_ context.Context, userID int) ([]*models.Event, error) {
	var out []*models.Event
	for id, event := range r.events {
		if containsInt(r.admins[id], userID) || containsInt(r.players[id], userID) {
			clone := *event
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, _ repositories.SQLExecutor, event *models.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	event, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.LogoKey = logoKey
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) LockForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	return nil
}

func (r *fakeEventRepo) AddAdmin(_ context.Context, _ repositories.SQLExecutor, eventID, userID int) error {
	return r.addMember(r.admins, eventID, userID)
}

func (r *fakeEventRepo) AddPlayer(_ context.Context, _ repositories.SQLExecutor, eventID, userID int) error {
	return r.addMember(r.players, eventID, userID)
}

func (r *fakeEventRepo) addMember(members map[int][]int, eventID, userID int) error {
	if _, ok := r.events[eventID]; !ok {
		return repositories.ErrEventNotFound
	}
	if !r.userIDs[userID] {
		return repositories.ErrEventUserInvalid
	}
	if containsInt(members[eventID], userID) {
		return repositories.ErrEventMemberConflict
	}
	members[eventID] = append(members[eventID], userID)
	return nil
}

func (r *fakeEventRepo) RemovePlayer(_ context.Context, _ repositories.SQLExecutor, eventID, userID int) error {
	ids := r.players[eventID]
	for i, id := range ids {
		if id == userID {
			r.players[eventID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repositories.ErrEventMemberNotFound
}

func (r *fakeEventRepo) RemoveAllMembers(_ context.Context, _ repositories.SQLExecutor, eventID int) error {
	delete(r.admins, eventID)
	delete(r.players, eventID)
	return nil
}

func (r *fakeEventRepo) ListAdmins(_ context.Context, eventID int) ([]models.User, error) {
	return r.membersOf(r.admins[eventID]), nil
}

func (r *fakeEventRepo) ListPlayers(_ context.Context, _ repositories.SQLExecutor, eventID int) ([]models.User, error) {
	return r.membersOf(r.players[eventID]), nil
}

func (r *fakeEventRepo) membersOf(ids []int) []models.User {
	users := make([]models.User, len(ids))
	for i, id := range ids {
		users[i] = models.User{ID: id}
	}
	return users
}

func (r *fakeEventRepo) GetRole(_ context.Context, eventID, userID int) (models.EventRole, error) {
	switch {
	case containsInt(r.admins[eventID], userID):
		return models.EventRoleAdmin, nil
	case containsInt(r.players[eventID], userID):
		return models.EventRolePlayer, nil
	default:
		return models.EventRoleNone, nil
	}
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int]*models.Match{}, nextID: 1}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	clone := *match
	r.matches[match.ID] = &clone
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *match
	return &clone, nil
}

func (r *fakeMatchRepo) ListByEvent(_ context.Context, eventID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var out []*models.Match
	for _, match := range r.matches {
		if match.EventID != eventID {
			continue
		}
		if statusFilter != nil && match.Status != *statusFilter {
			continue
		}
		clone := *match
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) CountByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) (int, error) {
	count := 0
	for _, match := range r.matches {
		if match.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id, p1Score, p2Score int) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Player1Score = &p1Score
	match.Player2Score = &p2Score
	match.Status = models.MatchStatusCompleted
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) DeleteByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) error {
	for id, match := range r.matches {
		if match.EventID == eventID {
			delete(r.matches, id)
		}
	}
	return nil
}

func containsInt(ids []int, id int) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
