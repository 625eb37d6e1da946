package service_test

import (
	"testing"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreatePoll(t *testing.T) {
	store := newFakeStore()
	s := service.New(store, zap.NewNop())

	tally, err := s.CreatePoll(postID, "October 14, 2020 12:15 PM", models.PollConfig{Title: "Pho?", MinPeople: 2})

	require.NoError(t, err)
	stored, err := store.Get(postID)
	require.NoError(t, err)
	assert.Equal(t, tally, stored)
	assert.Equal(t, 2, stored.MinPeople)
	assert.Empty(t, stored.Going)
	assert.Equal(t, "October 14, 2020 12:15 PM", stored.EventDateTime)
}

func TestCreatePollStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errUnavailable
	s := service.New(store, zap.NewNop())

	_, err := s.CreatePoll(postID, "", models.PollConfig{MinPeople: 4})

	assert.ErrorIs(t, err, errUnavailable)
}

func TestPurgeExpired(t *testing.T) {
	store := newFakeStore(
		models.NewTally("old", "", 4, time.Now().Add(-2*models.TallyTTL)),
		models.NewTally("new", "", 4, time.Now()),
	)
	s := service.New(store, zap.NewNop())

	s.PurgeExpired()

	_, err := store.Get("old")
	assert.ErrorIs(t, err, models.ErrTallyNotFound)
	_, err = store.Get("new")
	assert.NoError(t, err)
}
