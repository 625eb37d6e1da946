package cron_test

import (
	"testing"
	"time"

	"github.com/nevaan9/pho_bot/pkg/cron"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDaily(t *testing.T) {
	s := cron.New(time.UTC, zap.NewNop())

	err := s.Daily("04:00", func() {})

	assert.NoError(t, err)
}

func TestStopWithoutStart(t *testing.T) {
	s := cron.New(time.UTC, zap.NewNop())

	assert.NotPanics(t, s.Stop)
}
