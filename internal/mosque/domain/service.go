package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateMosqueRequest) (*MosqueResponse, error)
	GetByID(ctx context.Context, id string) (*MosqueResponse, error)
	List(ctx context.Context) ([]MosqueResponse, error)
	AddAdmin(ctx context.Context, mosqueID, userID snowflake.ID) error
}

type CreateMosqueRequest struct {
	Name        string
	Address     string
	AdminUserID snowflake.ID
}

type MosqueResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address"`
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidMosque = errors.New("invalid_mosque")
	ErrMosqueExists  = errors.New("mosque_exists")
)
