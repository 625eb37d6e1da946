// Package cron runs daily maintenance tasks such as purging expired tallies.
package cron

import (
	"time"

	"github.com/marcsantiago/gocron"
	"go.uber.org/zap"
)

type Scheduler struct {
	sc      *gocron.Scheduler
	stopped chan bool
	l       *zap.Logger
}

func New(loc *time.Location, l *zap.Logger) *Scheduler {
	gocron.ChangeLoc(loc)
	return &Scheduler{sc: gocron.NewScheduler(), l: l}
}

// Daily registers task to run every day at atTime ("15:04").
func (s *Scheduler) Daily(atTime string, task func()) error {
	j := s.sc.Every(1, false).Days().At(atTime)
	if j.Err() != nil {
		return j.Err()
	}
	s.l.Debug("adding daily job", zap.String("at", atTime))
	j.Do(task)
	return nil
}

func (s *Scheduler) Start() {
	_, next := s.sc.NextRun()
	s.l.Info("starting scheduler", zap.Time("next_run", next))
	s.stopped = s.sc.Start()
}

func (s *Scheduler) Stop() {
	if s.stopped == nil {
		return
	}
	s.stopped <- true
	s.sc.Clear()
	s.stopped = nil
}
