package receipts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Receipt records a wizard draft that was accepted by the project API.
type Receipt struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID        string         `gorm:"not null;index" json:"user_id"`
	ProjectID     string         `gorm:"not null" json:"project_id"`
	Title         string         `gorm:"not null" json:"title"`
	EstimatedCost float64        `json:"estimated_cost"`
	Payload       datatypes.JSON `json:"payload"`
	SubmittedAt   time.Time      `gorm:"not null" json:"submitted_at"`
}

// TableName overrides the gorm default
func (Receipt) TableName() string {
	return "wizard_submission_receipts"
}
