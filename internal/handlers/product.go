package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/requestdata"
	"github.com/yungbote/coursesmith-backend/internal/services"
)

type ProductHandler struct {
	log            *logger.Logger
	productService services.ProductService
}

func NewProductHandler(log *logger.Logger, productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		log:            log.With("handler", "ProductHandler"),
		productService: productService,
	}
}

func (h *ProductHandler) ListUserProducts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	products, err := h.productService.GetUserProducts(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListUserProducts failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_products_failed", err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}
