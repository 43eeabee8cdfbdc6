package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
)

// DispatcherConfig tunes the outbox drain loop.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BackoffBase  time.Duration
	LockTimeout  time.Duration
}

// Dispatcher drains the report delivery outbox. Delivery is at-least-once:
// rows are claimed, delivered, then marked; a crash between delivery and
// mark re-delivers. Failures back off and dead-letter after MaxAttempts,
// and never touch the sealed record they belong to.
type Dispatcher struct {
	outboxRepo repository.OutboxRepository
	reportRepo repository.ZReportRepository
	exportSvc  *service.ExportService
	cfg        DispatcherConfig
	logger     *logrus.Logger

	id      string
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDispatcher creates a new outbox dispatcher.
func NewDispatcher(
	outboxRepo repository.OutboxRepository,
	reportRepo repository.ZReportRepository,
	exportSvc *service.ExportService,
	cfg DispatcherConfig,
	logger *logrus.Logger,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 30 * time.Second
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 5 * time.Minute
	}

	hostname, _ := os.Hostname()
	return &Dispatcher{
		outboxRepo: outboxRepo,
		reportRepo: reportRepo,
		exportSvc:  exportSvc,
		cfg:        cfg,
		logger:     logger,
		id:         fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8]),
		stop:       make(chan struct{}),
	}
}

// Start begins the drain loop.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	d.ticker = time.NewTicker(d.cfg.PollInterval)
	d.wg.Add(1)
	go d.run()

	d.logger.WithField("dispatcher_id", d.id).Info("outbox dispatcher started")
}

// Stop halts the loop and waits for the in-flight batch to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return
	}
	d.started = false

	d.ticker.Stop()
	close(d.stop)
	d.wg.Wait()
	d.logger.Info("outbox dispatcher stopped")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stop:
			return
		case <-d.ticker.C:
			d.DrainOnce(context.Background())
		}
	}
}

// DrainOnce claims and delivers one batch. Exposed for tests and manual
// operational drains.
func (d *Dispatcher) DrainOnce(ctx context.Context) int {
	now := time.Now().UTC()
	rows, err := d.outboxRepo.ClaimBatch(ctx, d.id, d.cfg.BatchSize, now, now.Add(-d.cfg.LockTimeout))
	if err != nil {
		d.logger.WithError(err).Error("failed to claim outbox batch")
		return 0
	}

	delivered := 0
	for i := range rows {
		if d.deliver(ctx, &rows[i]) {
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, row *entity.ReportOutbox) bool {
	log := d.logger.WithFields(logrus.Fields{
		"outbox_id": row.ID,
		"report_id": row.ReportID,
		"channel":   row.Channel,
	})

	report, err := d.reportRepo.GetByID(ctx, row.ReportID)
	if err == nil && report == nil {
		err = fmt.Errorf("report %s not found", row.ReportID)
	}
	if err == nil {
		switch row.Channel {
		case entity.OutboxChannelPrint:
			err = d.exportSvc.Print(report)
		case entity.OutboxChannelEmail:
			err = d.exportSvc.Email(report)
		case entity.OutboxChannelExport:
			_, err = d.exportSvc.ExportToFile(report)
		default:
			err = fmt.Errorf("unknown delivery channel %q", row.Channel)
		}
	}

	if err != nil {
		attempt := row.Attempts + 1
		backoff := time.Duration(attempt) * d.cfg.BackoffBase
		log.WithError(err).WithField("attempt", attempt).Warn("outbox delivery failed")
		if markErr := d.outboxRepo.MarkFailed(ctx, row.ID, attempt, d.cfg.MaxAttempts, time.Now().UTC().Add(backoff), err); markErr != nil {
			log.WithError(markErr).Error("failed to mark outbox row failed")
		}
		return false
	}

	if err := d.outboxRepo.MarkSent(ctx, row.ID); err != nil {
		log.WithError(err).Error("failed to mark outbox row sent")
		return false
	}
	log.Debug("outbox delivery sent")
	return true
}
