package services

import (
	"context"

	"synca/errors"
	"synca/models"
	"synca/repository"
)

const notificationListLimit = 50

type NotificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List thông báo mới nhất của user; markRead đánh dấu đã đọc sau khi lấy
func (s *NotificationService) List(ctx context.Context, actor *Actor, markRead bool) ([]models.Notification, error) {
	if actor == nil || actor.ID == 0 {
		return nil, errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	list, err := s.store.Notifications().ListByUser(ctx, actor.ID, notificationListLimit)
	if err != nil {
		return nil, errors.Internal("Could not load notifications", err)
	}
	if markRead {
		if err := s.store.Notifications().MarkAllRead(ctx, actor.ID); err != nil {
			return nil, errors.Internal("Could not update notifications", err)
		}
	}
	return list, nil
}
