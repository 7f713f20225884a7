package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/requestdata"
	"github.com/yungbote/coursesmith-backend/internal/services"
)

type ExportHandler struct {
	log           *logger.Logger
	exportService services.ExportService
}

func NewExportHandler(log *logger.Logger, exportService services.ExportService) *ExportHandler {
	return &ExportHandler{
		log:           log.With("handler", "ExportHandler"),
		exportService: exportService,
	}
}

// ExportScorm builds the SCORM package for one training plan and streams
// it back as a zip download.
func (h *ExportHandler) ExportScorm(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	planID, err := uuid.Parse(c.Param("planID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}

	filename, archive, err := h.exportService.BuildScormPackage(c.Request.Context(), nil, rd.UserID, planID)
	if err != nil {
		h.log.Error("ExportScorm failed", "error", err, "plan_id", planID, "user_id", rd.UserID)
		RespondError(c, http.StatusUnprocessableEntity, "export_failed", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", archive)
}
