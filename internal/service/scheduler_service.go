package service

import (
	"context"

	"insightops-be/internal/dto"
	"insightops-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

type ISchedulerService interface {
	Start() error
	Stop()
}

// schedulerService runs the periodic decay scan over every workspace.
type schedulerService struct {
	cron         *cron.Cron
	cronExpr     string
	decayService IDecayService
	sysLogger    logger.ILogger
}

func NewSchedulerService(cronExpr string, decayService IDecayService, sysLogger logger.ILogger) ISchedulerService {
	return &schedulerService{
		cron:         cron.New(),
		cronExpr:     cronExpr,
		decayService: decayService,
		sysLogger:    sysLogger,
	}
}

func (s *schedulerService) Start() error {
	_, err := s.cron.AddFunc(s.cronExpr, s.runDecayScan)
	if err != nil {
		return err
	}
	s.cron.Start()

	s.sysLogger.Info("scheduler", "decay scan scheduled", map[string]interface{}{
		"cron": s.cronExpr,
	})
	return nil
}

func (s *schedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *schedulerService) runDecayScan() {
	ctx := context.Background()

	resp, err := s.decayService.BatchAnalyze(ctx, &dto.BatchAnalyzeRequest{}, "scheduler")
	if err != nil {
		s.sysLogger.Error("scheduler", "scheduled decay scan failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.sysLogger.Info("scheduler", "scheduled decay scan finished", map[string]interface{}{
		"analyzed":       resp.Analyzed,
		"decay_detected": resp.DecayDetected,
	})
}
