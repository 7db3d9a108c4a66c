package service

import (
	"context"
	"fmt"
	"subway_roulette_backend/pkg/logger"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ExpiryScheduler 定期把超时的挑战结算为失败
type ExpiryScheduler struct {
	sched    gocron.Scheduler
	service  *ChallengeService
	interval time.Duration
}

func NewExpiryScheduler(service *ChallengeService, interval time.Duration) (*ExpiryScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &ExpiryScheduler{sched: sched, service: service, interval: interval}, nil
}

func (e *ExpiryScheduler) Start() error {
	_, err := e.sched.NewJob(
		gocron.DurationJob(e.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.interval)
			defer cancel()
			if _, err := e.service.ExpireOverdue(ctx); err != nil {
				logger.Log.Warn("expiry sweep interrupted", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register expiry job: %w", err)
	}

	e.sched.Start()
	logger.Log.Info("expiry scheduler started", zap.Duration("interval", e.interval))
	return nil
}

func (e *ExpiryScheduler) Stop() error {
	return e.sched.Shutdown()
}
