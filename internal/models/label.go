package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Label is one selectable annotation class of a project.
type Label struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	Name      string    `json:"name" gorm:"not null"`

	// Reference is the external ontology identifier of the label, when
	// the label was imported rather than created by hand.
	Reference string `json:"reference"`
	Color     string `json:"color"`
}

// BeforeCreate assigns an ID when none was provided.
func (l *Label) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
