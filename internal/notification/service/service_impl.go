package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masjidkita/masjidkita/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("notification.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) error {
	if req.UserID == 0 {
		return domain.ErrInvalidUser
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.ErrInvalidTitle
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	n := &domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		MosqueID:  req.MosqueID,
		Title:     title,
		Message:   strings.TrimSpace(req.Message),
		Type:      req.Type,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if url := strings.TrimSpace(req.ActionURL); url != "" {
		n.ActionURL = &url
	}

	return s.repo.Create(ctx, n)
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]domain.Notification, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	return s.repo.MarkRead(ctx, userID, notificationID)
}
