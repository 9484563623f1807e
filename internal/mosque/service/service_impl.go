package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/masjidkita/masjidkita/internal/mosque/domain"
	"github.com/masjidkita/masjidkita/pkg/db"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(conn *gorm.DB, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		db:    conn,
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateMosqueRequest) (*domain.MosqueResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	mosque := domain.Mosque{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, mosque); err != nil {
			return err
		}
		if req.AdminUserID != 0 {
			return repo.AddAdmin(ctx, domain.MosqueAdmin{
				ID:        s.genID.Generate(),
				MosqueID:  mosque.ID,
				UserID:    req.AdminUserID,
				CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMosqueExists
		}
		return nil, err
	}

	return &domain.MosqueResponse{
		ID:      mosque.ID.String(),
		Name:    mosque.Name,
		Slug:    mosque.Slug,
		Address: mosque.Address,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.MosqueResponse, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return nil, domain.ErrInvalidMosque
	}
	mosqueID, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrInvalidMosque
	}

	mosque, err := s.repo.GetByID(ctx, mosqueID)
	if err != nil {
		return nil, err
	}

	return &domain.MosqueResponse{
		ID:      mosque.ID.String(),
		Name:    mosque.Name,
		Slug:    mosque.Slug,
		Address: mosque.Address,
	}, nil
}

func (s *service) List(ctx context.Context) ([]domain.MosqueResponse, error) {
	mosques, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.MosqueResponse, 0, len(mosques))
	for _, mosque := range mosques {
		resp = append(resp, domain.MosqueResponse{
			ID:      mosque.ID.String(),
			Name:    mosque.Name,
			Slug:    mosque.Slug,
			Address: mosque.Address,
		})
	}
	return resp, nil
}

func (s *service) AddAdmin(ctx context.Context, mosqueID, userID snowflake.ID) error {
	if _, err := s.repo.GetByID(ctx, mosqueID); err != nil {
		return err
	}
	err := s.repo.AddAdmin(ctx, domain.MosqueAdmin{
		ID:        s.genID.Generate(),
		MosqueID:  mosqueID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && db.IsDuplicateKeyErr(err) {
		return nil
	}
	return err
}
