package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetUserByID(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.add("Alice", "alice@example.com", "hash")
	svc := NewUserService(repo)

	user, err := svc.GetUserByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetUserByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_SelfOnly(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.add("Alice", "alice@example.com", "hash")
	bob := repo.add("Bob", "bob@example.com", "hash")
	svc := NewUserService(repo)

	name := "Mallory"
	_, err := svc.UpdateProfile(context.Background(), bob.ID, alice.ID, UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateProfile(context.Background(), alice.ID, alice.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Mallory", updated.Name)
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.add("Alice", "alice@example.com", "hash")
	svc := NewUserService(repo)

	short := "short"
	_, err := svc.UpdateProfile(context.Background(), alice.ID, alice.ID, UpdateProfileInput{Password: &short})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	password := "a new long password"
	updated, err := svc.UpdateProfile(context.Background(), alice.ID, alice.ID, UpdateProfileInput{Password: &password})
	require.NoError(t, err)
	assert.Empty(t, updated.PasswordHash)

	stored := repo.users[alice.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)))
}

func TestUpdateProfile_EmptyNameRejected(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.add("Alice", "alice@example.com", "hash")
	svc := NewUserService(repo)

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), alice.ID, alice.ID, UpdateProfileInput{Name: &blank})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
