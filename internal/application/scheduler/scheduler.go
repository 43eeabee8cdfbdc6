package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
)

// Schedule outcomes recorded after each run
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// ScheduleTrigger fires due closing schedules. It funnels every autonomous
// generation through the same service entry point the HTTP handler uses, so
// validation, sealing and auditing behave identically.
type ScheduleTrigger struct {
	scheduleRepo   repository.ScheduleRepository
	workPeriodRepo repository.WorkPeriodRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditLogRepository
	reportSvc      *service.ZReportService
	logger         *logrus.Logger

	tickInterval time.Duration
	ticker       *time.Ticker
	stop         chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	started      bool
}

// NewScheduleTrigger creates a new schedule trigger loop.
func NewScheduleTrigger(
	scheduleRepo repository.ScheduleRepository,
	workPeriodRepo repository.WorkPeriodRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	reportSvc *service.ZReportService,
	tickInterval time.Duration,
	logger *logrus.Logger,
) *ScheduleTrigger {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &ScheduleTrigger{
		scheduleRepo:   scheduleRepo,
		workPeriodRepo: workPeriodRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		reportSvc:      reportSvc,
		logger:         logger,
		tickInterval:   tickInterval,
		stop:           make(chan struct{}),
	}
}

// Start begins the trigger loop.
func (t *ScheduleTrigger) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true

	t.ticker = time.NewTicker(t.tickInterval)
	t.wg.Add(1)
	go t.run()

	t.logger.WithField("interval", t.tickInterval.String()).Info("schedule trigger started")
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (t *ScheduleTrigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return
	}
	t.started = false

	t.ticker.Stop()
	close(t.stop)
	t.wg.Wait()
	t.logger.Info("schedule trigger stopped")
}

func (t *ScheduleTrigger) run() {
	defer t.wg.Done()

	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			t.RunNow(context.Background())
		}
	}
}

// RunNow executes one pass over all enabled schedules. Exposed so tests and
// operational tooling can fire the loop deterministically.
func (t *ScheduleTrigger) RunNow(ctx context.Context) {
	schedules, err := t.scheduleRepo.ListEnabled(ctx)
	if err != nil {
		t.logger.WithError(err).Error("failed to list enabled schedules")
		return
	}

	now := time.Now()
	for i := range schedules {
		if !schedules[i].IsDue(now) {
			continue
		}
		t.fire(ctx, &schedules[i], now)
	}
}

// fire handles one due schedule: validate, then generate or skip. The
// outcome is recorded either way so the schedule does not re-fire within the
// same due window.
func (t *ScheduleTrigger) fire(ctx context.Context, schedule *entity.ZReportSchedule, now time.Time) {
	log := t.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"store_id":    schedule.StoreID,
		"terminal_id": schedule.TerminalID,
	})

	systemUser, err := t.userRepo.GetSystemUser(ctx)
	if err != nil || systemUser == nil {
		log.WithError(err).Error("system user unavailable, cannot fire schedule")
		return
	}

	period, err := t.workPeriodRepo.GetOpenByTerminal(ctx, schedule.StoreID, schedule.TerminalID)
	if err != nil {
		log.WithError(err).Error("failed to look up open work period")
		t.fail(ctx, schedule, systemUser, now, err.Error())
		return
	}
	if period == nil {
		t.skip(ctx, schedule, systemUser, now, "no open work period on terminal")
		return
	}

	validation, err := t.reportSvc.ValidateCanGenerate(ctx, period.ID)
	if err != nil {
		log.WithError(err).Error("pre-generation validation failed")
		t.fail(ctx, schedule, systemUser, now, err.Error())
		return
	}
	if !validation.CanGenerate {
		reason := blockingSummary(validation)
		t.skip(ctx, schedule, systemUser, now, reason)
		return
	}

	// Warnings only: generate through the same entry point operators use.
	// No cash count is available autonomously; a policy that requires one
	// surfaces as a blocking issue above.
	output, err := t.reportSvc.Generate(ctx, &service.GenerateInput{
		WorkPeriodID: period.ID,
		UserID:       systemUser.ID,
	})
	if err != nil {
		if apperror.IsAppError(err) {
			t.skip(ctx, schedule, systemUser, now, err.Error())
			return
		}
		log.WithError(err).Error("scheduled generation failed")
		t.fail(ctx, schedule, systemUser, now, err.Error())
		return
	}

	log.WithFields(logrus.Fields{
		"report":  output.Report.FormattedNumber,
		"created": output.Created,
	}).Info("scheduled z-report generated")
	t.record(ctx, schedule, now, OutcomeGenerated, "")
}

func (t *ScheduleTrigger) skip(ctx context.Context, schedule *entity.ZReportSchedule, systemUser *entity.User, now time.Time, reason string) {
	t.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"reason":      reason,
	}).Warn("scheduled closing skipped")

	audit := &entity.AuditLog{
		ActorID:    systemUser.ID,
		Action:     entity.AuditActionScheduleSkip,
		EntityType: "z_report_schedule",
		EntityID:   schedule.ID.String(),
		Detail:     reason,
	}
	if err := t.auditRepo.Append(ctx, audit); err != nil {
		t.logger.WithError(err).Error("failed to append skip audit entry")
	}
	t.record(ctx, schedule, now, OutcomeSkipped, reason)
}

// fail records an infrastructure failure during a scheduled run. Unlike a
// skip it signals something operators must look at, so it gets its own audit
// action.
func (t *ScheduleTrigger) fail(ctx context.Context, schedule *entity.ZReportSchedule, systemUser *entity.User, now time.Time, reason string) {
	audit := &entity.AuditLog{
		ActorID:    systemUser.ID,
		Action:     entity.AuditActionScheduleError,
		EntityType: "z_report_schedule",
		EntityID:   schedule.ID.String(),
		Detail:     reason,
	}
	if err := t.auditRepo.Append(ctx, audit); err != nil {
		t.logger.WithError(err).Error("failed to append error audit entry")
	}
	t.record(ctx, schedule, now, OutcomeError, reason)
}

func (t *ScheduleTrigger) record(ctx context.Context, schedule *entity.ZReportSchedule, now time.Time, outcome, reason string) {
	if err := t.scheduleRepo.RecordOutcome(ctx, schedule.ID, now, outcome, reason); err != nil {
		t.logger.WithError(err).Error("failed to record schedule outcome")
	}
}

func blockingSummary(validation *service.ValidationResult) string {
	summary := ""
	for _, issue := range validation.Issues {
		if !issue.Blocking {
			continue
		}
		if summary != "" {
			summary += "; "
		}
		summary += fmt.Sprintf("%s: %s", issue.Code, issue.Message)
	}
	return summary
}
