package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product kind tags. The content blob shape is kind-specific; each renderer
// owns the parsing of its own kind.
const (
	ProductKindSlideDeck        = "Slide Deck"
	ProductKindOnePager         = "One Pager"
	ProductKindTextPresentation = "Text Presentation"
	ProductKindPDFLesson        = "PDF Lesson"
	ProductKindQuiz             = "Quiz"
	ProductKindTrainingPlan     = "Training Plan"
)

// Product is a previously generated piece of teaching content owned by a
// user: a slide deck, one-pager, quiz, or the training plan outline itself.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	SecondaryName string         `gorm:"column:secondary_name" json:"secondary_name"`
	Kind          string         `gorm:"column:kind;not null;index" json:"kind"`
	Content       datatypes.JSON `gorm:"column:content;type:jsonb" json:"content"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }
