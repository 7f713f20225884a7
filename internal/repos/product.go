package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

// ProductRepo is read-only: products are written by the generation service,
// this backend only resolves and exports them.
type ProductRepo interface {
	GetByIDAndUserID(ctx context.Context, tx *gorm.DB, productID, userID uuid.UUID) (*types.Product, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Product, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) GetByIDAndUserID(ctx context.Context, tx *gorm.DB, productID, userID uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Product
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", productID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *productRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Product
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
