package main

import (
	"context"
	"log"
	"time"

	"ridereminder/internal/repositories"
)

const (
	reminderTick    = 30 * time.Second
	reminderTimeout = 1 * time.Minute
)

// startReminderNotifier periodically picks up requests whose reminder time
// has passed, logs the reminder and marks the row so it fires once.
func startReminderNotifier(ctx context.Context, repo *repositories.RequestRepository, infoLog, errorLog *log.Logger) {
	if repo == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(reminderTick)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, reminderTimeout)
			defer cancel()

			due, err := repo.GetDueReminders(runCtx, time.Now())
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("reminder notifier: failed to fetch due reminders: %v", err)
				}
				return
			}
			for _, req := range due {
				if err := repo.MarkReminded(runCtx, req.ID); err != nil {
					if errorLog != nil {
						errorLog.Printf("reminder notifier: failed to mark request %s: %v", req.ID, err)
					}
					continue
				}
				if infoLog != nil {
					infoLog.Printf("reminder notifier: request %s for user %s leaves at %s (%s -> %s)",
						req.ID, req.UserID, req.Start.Time.Format(time.RFC3339),
						req.Start.Location.Address, req.End.Location.Address)
				}
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
