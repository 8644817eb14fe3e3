package replica

import (
	"context"
	"time"
)

// DefaultRefreshTimeout bounds one scheduled refresh
const DefaultRefreshTimeout = 10 * time.Minute

// RefreshJob runs a refresh from the scheduler
type RefreshJob struct {
	refresher *Refresher
	timeout   time.Duration
}

// NewRefreshJob creates the scheduled refresh job; a non-positive timeout uses DefaultRefreshTimeout
func NewRefreshJob(refresher *Refresher, timeout time.Duration) *RefreshJob {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &RefreshJob{refresher: refresher, timeout: timeout}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "replica_refresh"
}

// Run executes one refresh
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.refresher.Refresh(ctx)
	return err
}
