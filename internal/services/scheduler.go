package services

import (
	"context"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
	"auction-engine/pkg/utils"

	"github.com/robfig/cron/v3"
)

// CronLifecycleScheduler persists transition jobs and fires the due
// ones on a cron cadence. Jobs survive restarts; a failed execution
// stays pending and is retried on the next pass.
type CronLifecycleScheduler struct {
	cron       *cron.Cron
	repo       domain.SchedulerRepository
	auctionMgr *AuctionManager
	pollSpec   string
	log        logger.Logger
}

func NewCronLifecycleScheduler(repo domain.SchedulerRepository, auctionMgr *AuctionManager,
	pollSpec string, log logger.Logger) *CronLifecycleScheduler {
	return &CronLifecycleScheduler{
		cron:       cron.New(cron.WithSeconds()),
		repo:       repo,
		auctionMgr: auctionMgr,
		pollSpec:   pollSpec,
		log:        log,
	}
}

func (s *CronLifecycleScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting lifecycle scheduler", "poll", s.pollSpec)

	_, err := s.cron.AddFunc(s.pollSpec, func() {
		s.processPendingJobs(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronLifecycleScheduler) Stop() error {
	s.log.Info("Stopping lifecycle scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronLifecycleScheduler) ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error {
	return s.createJob(ctx, auctionID, domain.JobStartAuction, startTime)
}

func (s *CronLifecycleScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	return s.createJob(ctx, auctionID, domain.JobEndAuction, endTime)
}

func (s *CronLifecycleScheduler) ScheduleAuctionSettle(ctx context.Context, auctionID string, runAt time.Time) error {
	return s.createJob(ctx, auctionID, domain.JobSettleAuction, runAt)
}

func (s *CronLifecycleScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.repo.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronLifecycleScheduler) createJob(ctx context.Context, auctionID string, jobType domain.JobType, runAt time.Time) error {
	job := &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   jobType,
		RunAt:     runAt,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	}
	return s.repo.CreateJob(ctx, job)
}

func (s *CronLifecycleScheduler) processPendingJobs(ctx context.Context) {
	jobs, err := s.repo.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		s.log.Info("Processing job", "job_id", job.ID, "type", job.JobType, "auction_id", job.AuctionID)

		var err error
		switch job.JobType {
		case domain.JobStartAuction:
			err = s.auctionMgr.StartAuction(ctx, job.AuctionID)
		case domain.JobEndAuction:
			err = s.auctionMgr.EndAuction(ctx, job.AuctionID)
		case domain.JobSettleAuction:
			err = s.auctionMgr.SettleAuction(ctx, job.AuctionID)
		}

		if err != nil {
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			// Stays pending, retried on the next pass.
			continue
		}

		if err := s.repo.UpdateJobStatus(ctx, job.ID, domain.JobExecuted); err != nil {
			s.log.Error("Failed to mark job executed", "job_id", job.ID, "error", err)
		}
	}
}
