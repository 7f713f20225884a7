package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursesmith-backend/internal/export"
	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/repos"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

const packageSuffix = "_scorm.zip"

type ExportService interface {
	// BuildScormPackage exports a training plan and the user's matching
	// products into one SCORM 2004 archive. Returns the download filename
	// and the archive bytes.
	BuildScormPackage(ctx context.Context, tx *gorm.DB, userID, planID uuid.UUID) (string, []byte, error)
}

type exportService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
}

func NewExportService(db *gorm.DB, baseLog *logger.Logger, productRepo repos.ProductRepo) ExportService {
	serviceLog := baseLog.With("service", "ExportService")
	return &exportService{
		db:          db,
		log:         serviceLog,
		productRepo: productRepo,
	}
}

func (es *exportService) BuildScormPackage(ctx context.Context, tx *gorm.DB, userID, planID uuid.UUID) (string, []byte, error) {
	transaction := tx
	if transaction == nil {
		transaction = es.db
	}

	// 1) Load the plan; a missing or wrong-kind plan aborts the export
	// before any work is done.
	plan, err := es.productRepo.GetByIDAndUserID(ctx, transaction, planID, userID)
	if err != nil {
		es.log.Error("Training plan not found", "error", err, "plan_id", planID, "owner_id", userID)
		return "", nil, fmt.Errorf("load training plan: %w", err)
	}
	if plan.Kind != types.ProductKindTrainingPlan {
		return "", nil, fmt.Errorf("product %s is a %q, not a training plan", planID, plan.Kind)
	}

	var planContent types.TrainingPlanContent
	if err := json.Unmarshal(plan.Content, &planContent); err != nil {
		es.log.Error("Training plan content not parseable", "error", err, "plan_id", planID)
		return "", nil, fmt.Errorf("parse training plan content: %w", err)
	}
	planTitle := strings.TrimSpace(planContent.Title)
	if planTitle == "" {
		planTitle = plan.Name
	}

	// 2) Load the owner's full product catalog once.
	catalog, err := es.productRepo.GetByUserIDs(ctx, transaction, []uuid.UUID{userID})
	if err != nil {
		return "", nil, fmt.Errorf("load product catalog: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	localizer := export.NewAssetLocalizer(es.log)

	root := &export.Node{Title: planTitle}
	usedIDs := map[uuid.UUID]bool{plan.ID: true}

	// 3) Slot processing is strictly sequential: every resolution must see
	// the used-set as of all prior assignments.
	for _, section := range planContent.Sections {
		sectionNode := root.AddChild(&export.Node{Title: section.Title})
		for _, lesson := range section.Lessons {
			lessonNode := sectionNode.AddChild(&export.Node{Title: lesson.Title})
			for _, requested := range lesson.RecommendedContent {
				es.exportSlot(ctx, zw, localizer, lessonNode, lesson, requested, planTitle, catalog, usedIDs)
			}
		}
	}

	// 4) Descriptor last, then close the archive.
	manifest, err := export.BuildManifest(root)
	if err != nil {
		return "", nil, fmt.Errorf("build manifest: %w", err)
	}
	mw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return "", nil, fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := mw.Write(manifest); err != nil {
		return "", nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", nil, fmt.Errorf("finalize archive: %w", err)
	}

	filename := sanitizeFilename(planTitle) + packageSuffix
	es.log.Info("SCORM package built", "plan_id", planID, "filename", filename, "bytes", buf.Len())
	return filename, buf.Bytes(), nil
}

// exportSlot resolves one (lesson, requested type) slot and, on a hit,
// renders, localizes, and records it. Misses and per-item failures are
// non-fatal; the slot is simply omitted.
func (es *exportService) exportSlot(
	ctx context.Context,
	zw *zip.Writer,
	localizer *export.AssetLocalizer,
	lessonNode *export.Node,
	lesson types.TrainingLesson,
	requestedType string,
	planTitle string,
	catalog []*types.Product,
	usedIDs map[uuid.UUID]bool,
) {
	product := export.ResolveProduct(lesson, requestedType, planTitle, catalog, usedIDs)
	if product == nil {
		return
	}
	// A match consumes the product even if a later step fails, so no two
	// slots ever bind the same id.
	usedIDs[product.ID] = true

	renderer, ok := export.RendererForKind(product.Kind, es.log)
	if !ok {
		return
	}
	rctx := export.RenderContext{PlanTitle: planTitle, LessonTitle: lesson.Title}
	html, err := renderer.Render(product, rctx)
	if err != nil {
		es.log.Warn("Rendering failed, skipping item", "product_id", product.ID, "kind", product.Kind, "error", err)
		return
	}

	folder := product.ID.String()
	localized, assetFiles := localizer.Localize(ctx, html, zw, folder)

	docPath := folder + "/index.html"
	w, err := zw.Create(docPath)
	if err != nil {
		es.log.Warn("Failed to create document entry, skipping item", "path", docPath, "error", err)
		return
	}
	if _, err := w.Write([]byte(localized)); err != nil {
		es.log.Warn("Failed to write document, skipping item", "path", docPath, "error", err)
		return
	}

	lessonNode.AddChild(&export.Node{
		Title:      product.Name,
		ResourceID: export.NewResourceID(),
		Href:       docPath,
		AssetFiles: assetFiles,
	})
}

var unsafeFilenamePattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFilename(title string) string {
	name := unsafeFilenamePattern.ReplaceAllString(strings.TrimSpace(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "course"
	}
	return name
}
