package service

import (
	"fmt"
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/nevaan9/pho_bot/internal/repository"
	"go.uber.org/zap"
)

type PollService struct {
	r   repository.TallyStore
	l   *zap.Logger
	now func() time.Time
}

func New(r repository.TallyStore, l *zap.Logger) *PollService {
	return &PollService{
		r:   r,
		l:   l,
		now: time.Now,
	}
}

// CreatePoll stores the empty tally of a freshly posted poll.
func (s *PollService) CreatePoll(messageID, eventDateTime string, cfg models.PollConfig) (*models.Tally, error) {
	s.l.Debug("creating poll",
		zap.String("message_id", messageID),
		zap.String("title", cfg.Title),
		zap.String("event_date_time", eventDateTime),
		zap.Int("min_people", cfg.MinPeople))
	tally := models.NewTally(messageID, eventDateTime, cfg.MinPeople, s.now())
	if err := s.r.Create(tally); err != nil {
		s.l.Error("failed to create poll", zap.Error(err))
		return nil, fmt.Errorf("service: failed to create poll: %w", err)
	}
	return tally, nil
}

// PurgeExpired deletes the tallies past their TTL.
func (s *PollService) PurgeExpired() {
	n, err := s.r.Purge(s.now())
	if err != nil {
		s.l.Error("failed to purge expired tallies", zap.Error(err))
		return
	}
	s.l.Info("purged expired tallies", zap.Int("count", n))
}
