package service

import (
	"context"
	"fmt"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/logger"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

// storeNotifier is the default Notifier: it persists a notification row for
// the customer and logs the event. Delivery transport is someone else's
// problem; a write failure is logged and swallowed so a notification can
// never fail a lifecycle operation.
type storeNotifier struct {
	notes repository.NotificationRepository
}

func NewNotifier(notes repository.NotificationRepository) Notifier {
	return &storeNotifier{notes: notes}
}

var eventTitles = map[string]string{
	EventRentalCreated:       "Rental started",
	EventReservationQueued:   "Reservation queued",
	EventRentalReturned:      "Machine returned",
	EventRentalCancelled:     "Rental cancelled",
	EventRentalRemoved:       "Rental removed",
	EventReservationActivate: "Reservation activated",
}

func (n *storeNotifier) Notify(ctx context.Context, customerID int32, eventKind string, machineID, rentalID int32) {
	title, ok := eventTitles[eventKind]
	if !ok {
		title = eventKind
	}
	note := &domain.Notification{
		UserID:  customerID,
		Title:   title,
		Message: fmt.Sprintf("Machine %d, rental %d: %s", machineID, rentalID, title),
		Attributes: map[string]string{
			"type":       eventKind,
			"machine_id": fmt.Sprintf("%d", machineID),
			"rental_id":  fmt.Sprintf("%d", rentalID),
		},
	}
	if err := n.notes.Create(ctx, note); err != nil {
		logger.Error("Failed to write notification", "event", eventKind, "customer_id", customerID, "rental_id", rentalID, "error", err)
		return
	}
	logger.Info("Notification queued", "event", eventKind, "customer_id", customerID, "machine_id", machineID, "rental_id", rentalID)
}
