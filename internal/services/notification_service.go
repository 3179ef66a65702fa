package services

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

type NotificationService interface {
	List(ctx context.Context, actor models.ActorRef, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor models.ActorRef, id string) error
}

type notificationService struct {
	repo pgrepo.NotificationRepository
}

func NewNotificationService(repo pgrepo.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, actor models.ActorRef, unreadOnly bool, limit int) ([]models.Notification, error) {
	const op = "NotificationService.List"

	if actor.MemberID == "" {
		return []models.Notification{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out, err := s.repo.ListByRecipient(ctx, actor.MemberID, unreadOnly, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list notifications", err)
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor models.ActorRef, id string) error {
	const op = "NotificationService.MarkRead"

	if err := s.repo.MarkRead(ctx, id, actor.MemberID, time.Now().UTC()); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "notification not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to mark notification read", err)
	}
	return nil
}
