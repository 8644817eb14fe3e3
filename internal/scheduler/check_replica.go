package scheduler

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
)

// CheckReplicaJob verifies the integrity of the replica file
type CheckReplicaJob struct {
	store *database.Store
	log   zerolog.Logger
}

// NewCheckReplicaJob creates a new CheckReplicaJob
func NewCheckReplicaJob(store *database.Store, log zerolog.Logger) *CheckReplicaJob {
	return &CheckReplicaJob{
		store: store,
		log:   log.With().Str("job", "check_replica").Logger(),
	}
}

// Name returns the job name
func (j *CheckReplicaJob) Name() string {
	return "check_replica"
}

// Run executes PRAGMA integrity_check on the store queue
func (j *CheckReplicaJob) Run() error {
	if j.store == nil {
		j.log.Warn().Msg("Store not initialized, skipping")
		return nil
	}

	err := j.store.Do(func(conn *sql.DB) error {
		var result string
		if err := conn.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
			return fmt.Errorf("integrity check failed: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity check returned: %s", result)
		}
		return nil
	})
	if err != nil {
		j.log.Error().Err(err).Str("replica", j.store.Path()).Msg("Replica integrity check failed")
		return fmt.Errorf("replica %s: %w", j.store.Name(), err)
	}

	j.log.Debug().Msg("Replica integrity OK")
	return nil
}
