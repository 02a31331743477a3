package jobs

import (
	"database/sql"

	"github.com/junusg25/kamer-modul-sub006/internal/config"
	"github.com/junusg25/kamer-modul-sub006/internal/logger"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

// JobRunner coordinates the scheduled maintenance jobs.
type JobRunner struct {
	db      *sql.DB
	rentals service.RentalService
	config  *config.Config
}

func NewJobRunner(db *sql.DB, rentals service.RentalService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:      db,
		rentals: rentals,
		config:  cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery so one bad job
// cannot take down the scheduler process.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs every nightly job once, for manual execution.
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.MarkOverdueRentals()
	jr.ActivateDueReservations()
}
