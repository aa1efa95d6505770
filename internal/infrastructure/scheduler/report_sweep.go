package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

// ReportSweep periodically re-requests closure reports for archived cases
// whose generation previously failed. Keeps the transition path decoupled
// from the unreliable renderer: a failed report is retried here, never
// blocks archival.
type ReportSweep struct {
	cron      *cron.Cron
	caseRepo  port.CaseRepository
	auditRepo port.AuditRepository
	reportGen port.ClosureReportGenerator
	logger    *zap.Logger

	schedule  string
	batchSize int
}

// Config holds report sweep configuration
type Config struct {
	Schedule  string
	BatchSize int
}

// NewReportSweep creates a new pending-report sweep
func NewReportSweep(
	caseRepo port.CaseRepository,
	auditRepo port.AuditRepository,
	reportGen port.ClosureReportGenerator,
	cfg Config,
	logger *zap.Logger,
) *ReportSweep {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 15m"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	return &ReportSweep{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		caseRepo:  caseRepo,
		auditRepo: auditRepo,
		reportGen: reportGen,
		logger:    logger,
		schedule:  schedule,
		batchSize: batchSize,
	}
}

// Start registers the sweep job and starts the cron loop
func (s *ReportSweep) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Closure report sweep started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron loop, waiting for a running sweep to finish
func (s *ReportSweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Closure report sweep stopped")
}

// Run performs one sweep over archived cases missing a closure report
func (s *ReportSweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pending, err := s.caseRepo.ListArchivedWithoutReport(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Report sweep failed to list pending cases", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	s.logger.Info("Report sweep found cases awaiting closure reports", zap.Int("count", len(pending)))

	for _, kase := range pending {
		url, err := s.reportGen.Generate(ctx, kase.ID, "system")
		if err != nil {
			s.logger.Warn("Report sweep: generation still failing",
				zap.String("case_id", kase.ID),
				zap.Error(err))
			continue
		}

		if err := s.caseRepo.SetClosureReportURL(ctx, kase.ID, url); err != nil {
			s.logger.Error("Report sweep: failed to record report URL",
				zap.String("case_id", kase.ID),
				zap.Error(err))
			continue
		}

		if err := s.auditRepo.Append(ctx, &entity.AuditEntry{
			UserID:   "system",
			Action:   entity.AuditClosureReportGenerated,
			Entity:   "CASE",
			EntityID: kase.ID,
		}); err != nil {
			s.logger.Warn("Report sweep: failed to audit report generation",
				zap.String("case_id", kase.ID),
				zap.Error(err))
		}

		s.logger.Info("Report sweep: closure report generated",
			zap.String("case_id", kase.ID),
			zap.String("url", url))
	}
}
