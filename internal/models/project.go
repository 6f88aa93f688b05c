package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project represents one annotation collection. Objects are never shared
// across projects.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`

	// CustomFields holds project-level template variables as a JSON object,
	// merged into object bindings by the ontology sync collaborator.
	CustomFields string `json:"custom_fields"`

	// SyncConfig holds the serialized configuration of the external
	// annotation sync target (endpoint, queries). Opaque to this service.
	SyncConfig string `json:"sync_config"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns an ID when none was provided.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
