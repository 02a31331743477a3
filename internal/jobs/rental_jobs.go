package jobs

import (
	"context"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/logger"
)

// MarkOverdueRentals persists the overdue status for active rentals whose
// planned return date has passed. The status is derived at read time
// anyway; this sweep keeps the stored rows and filter queries honest.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()

		query := `
			UPDATE rentals
			SET status = 'overdue',
			    updated_on = NOW()
			WHERE status = 'active'
			  AND planned_return_date IS NOT NULL
			  AND planned_return_date < $1
			RETURNING id, customer_id, machine_id, planned_return_date
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now().UTC().Format("2006-01-02"))
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				id, customerID, machineID int32
				plannedReturn             time.Time
			)
			if err := rows.Scan(&id, &customerID, &machineID, &plannedReturn); err != nil {
				logger.Error("Failed to scan overdue rental", "error", err)
				continue
			}
			count++
			logger.Debug("Marked rental as overdue",
				"rental_id", id,
				"customer_id", customerID,
				"machine_id", machineID,
				"planned_return_date", plannedReturn.Format("2006-01-02"))
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue rentals", "error", err)
			return
		}

		logger.Info("Marked rentals as overdue", "count", count)
	})
}

// ActivateDueReservations promotes reservations whose start date has
// arrived on machines that are currently free. Reservations behind a live
// rental stay queued; the guard inside the queue advancement handles that.
func (jr *JobRunner) ActivateDueReservations() {
	jr.runWithRecovery("ActivateDueReservations", func() {
		ctx := context.Background()

		query := `
			SELECT DISTINCT machine_id
			FROM rentals
			WHERE status = 'reserved'
			  AND start_date <= $1
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now().UTC().Format("2006-01-02"))
		if err != nil {
			logger.Error("Failed to find due reservations", "error", err)
			return
		}
		defer rows.Close()

		var machineIDs []int32
		for rows.Next() {
			var id int32
			if err := rows.Scan(&id); err != nil {
				logger.Error("Failed to scan machine id", "error", err)
				continue
			}
			machineIDs = append(machineIDs, id)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating due reservations", "error", err)
			return
		}

		promoted := 0
		for _, machineID := range machineIDs {
			if err := jr.rentals.AdvanceQueue(ctx, machineID); err != nil {
				logger.Error("Failed to advance queue", "machine_id", machineID, "error", err)
				continue
			}
			promoted++
		}

		logger.Info("Processed due reservations", "machines", len(machineIDs), "advanced", promoted)
	})
}
