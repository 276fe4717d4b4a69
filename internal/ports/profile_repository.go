package ports

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

type ProfileRepository interface {
	GetByName(ctx context.Context, name string) (domain.Profile, error)
	Active(ctx context.Context) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
	SetActive(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}
