// Package scheduler runs periodic dataset reloads on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/pkg/logger"
)

const moduleName = "scheduler"

// Reloader is the part of the repository the schedule drives
type Reloader interface {
	Reload(ctx context.Context)
}

// ReloadSchedule reloads datasets on a cron spec until its context ends
type ReloadSchedule struct {
	spec string
	cron *cron.Cron
}

// NewReloadSchedule validates spec ("@every 15m", "0 0 * * * *", ...) and
// registers the reload job. Nothing runs until Run is called.
func NewReloadSchedule(spec string, reloader Reloader, timeout time.Duration) (*ReloadSchedule, error) {
	c := cron.New()
	err := c.AddFunc(spec, func() {
		logger.Infof("Scheduled dataset reload (%s)", spec)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reloader.Reload(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, moduleName, err, "invalid reload schedule %q", spec)
	}
	return &ReloadSchedule{spec: spec, cron: c}, nil
}

// Run starts the schedule and blocks until ctx is cancelled
func (s *ReloadSchedule) Run(ctx context.Context) {
	s.cron.Start()
	logger.Infof("Dataset reload scheduled: %s", s.spec)
	<-ctx.Done()
	s.cron.Stop()
}
