package repositories

import (
	"context"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

type ScriptRepository interface {
	Create(ctx context.Context, script *models.Script) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Script, error)
	Update(ctx context.Context, script *models.Script) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]*models.Script, error)
	Count(ctx context.Context) (int64, error)
}
