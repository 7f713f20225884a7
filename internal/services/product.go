package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/repos"
	"github.com/yungbote/coursesmith-backend/internal/requestdata"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

type ProductService interface {
	GetUserProducts(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
}

func NewProductService(db *gorm.DB, baseLog *logger.Logger, productRepo repos.ProductRepo) ProductService {
	serviceLog := baseLog.With("service", "ProductService")
	return &productService{
		db:          db,
		log:         serviceLog,
		productRepo: productRepo,
	}
}

func (ps *productService) GetUserProducts(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		ps.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("Request data not set in context")
	}
	if rd.UserID == uuid.Nil {
		ps.log.Warn("User id not set in request data")
		return nil, fmt.Errorf("User id not set in request data")
	}
	transaction := tx
	if transaction == nil {
		transaction = ps.db
	}
	products, err := ps.productRepo.GetByUserIDs(ctx, transaction, []uuid.UUID{rd.UserID})
	if err != nil {
		ps.log.Error("GetUserProducts failed", "error", err, "user_id", rd.UserID)
		return nil, fmt.Errorf("get user products: %w", err)
	}
	return products, nil
}
