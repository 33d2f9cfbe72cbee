package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/config"
	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/service/inventory"
	"github.com/harshg28/stockroom/internal/service/issuance"
)

// Scheduler runs the periodic low-stock report: items at or below their
// reorder level are summarized and mailed to the stockroom head.
type Scheduler struct {
	cron      *cron.Cron
	inventory *inventory.Service
	notifier  issuance.Notifier
	cfg       config.Config
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, inv *inventory.Service, notifier issuance.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		inventory: inv,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Report.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Report.CronSchedule, s.sendLowStockReport)
	if err != nil {
		s.logger.Error("failed to schedule low-stock report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendLowStockReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	items, err := s.inventory.LowStockItems(ctx)
	if err != nil {
		s.logger.Error("failed to collect low-stock items", zap.Error(err))
		return
	}
	if len(items) == 0 {
		s.logger.Info("low-stock report skipped, all items in stock")
		return
	}

	var b strings.Builder
	b.WriteString("Items at or below reorder level:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- #%d %s: %d on hand (reorder at %d) [%s]\n",
			item.SerialNumber, item.Name, item.Quantity, item.ReorderLevel, item.StockStatus())
	}

	if s.notifier == nil {
		s.logger.Warn("low-stock report generated but no notifier configured", zap.Int("items", len(items)))
		return
	}

	n := models.Notification{
		Subject: fmt.Sprintf("Low stock report: %d item(s) need attention", len(items)),
		Body:    b.String(),
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("failed to send low-stock report", zap.Error(err))
		return
	}
	s.logger.Info("low-stock report sent", zap.Int("items", len(items)))
}
