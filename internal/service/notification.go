package service

import (
	"context"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
)

type notificationService struct {
	notes repository.NotificationRepository
}

func NewNotificationService(notes repository.NotificationRepository) NotificationService {
	return &notificationService{notes: notes}
}

func (s *notificationService) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.notes.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.notes.MarkAsRead(ctx, notificationID, userID)
}
