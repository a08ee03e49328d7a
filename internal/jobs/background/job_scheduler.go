package background

import (
	"context"
	"log"
	"sync"
	"time"

	"oficinagil/internal/adminstats"
	"oficinagil/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

const (
	statsRefreshInterval = 5 * time.Minute
	expirySweepInterval  = 1 * time.Hour
)

// JobScheduler manages the background jobs: keeping the admin stats cache
// warm and sweeping overdue subscriptions to expired.
type JobScheduler struct {
	scheduler gocron.Scheduler
	reporter  *adminstats.Reporter
	subRepo   repositories.SubscriptionRepository
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(reporter *adminstats.Reporter, subRepo repositories.SubscriptionRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		reporter:  reporter,
		subRepo:   subRepo,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	// Admin stats warm refresh - every 5 minutes, at most one pass at a time
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(statsRefreshInterval),
		gocron.NewTask(js.refreshAdminStats, context.Background()),
		gocron.WithName("admin-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create admin stats job: %v", err)
	} else {
		js.jobs["admin-stats-refresh"] = statsJob
	}

	// Subscription expiry sweep - hourly
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(expirySweepInterval),
		gocron.NewTask(js.sweepExpiredSubscriptions, context.Background()),
		gocron.WithName("subscription-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expiry sweep job: %v", err)
	} else {
		js.jobs["subscription-expiry-sweep"] = sweepJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) refreshAdminStats(ctx context.Context) {
	js.reporter.Refresh(ctx)
}

func (js *JobScheduler) sweepExpiredSubscriptions(ctx context.Context) {
	expired, err := js.subRepo.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("Subscription expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Subscription expiry sweep marked %d subscriptions expired", expired)
	}
}
