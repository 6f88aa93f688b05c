package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Object represents one imported image of a project.
type Object struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;index:objects_project_position"`

	// ObjectUUID is the identifier of the object in its source system.
	// Unique within a project, used to detect duplicates on re-import.
	ObjectUUID string `json:"object_uuid" gorm:"index"`

	// Position is the dense insertion-order index within the project.
	// Assigned once at import time, never reassigned; navigation orders
	// by this column.
	Position int `json:"position" gorm:"index:objects_project_position"`

	// ObjectData is the serialized source descriptor, discriminated by a
	// "type" tag. See the imaging package for the variants.
	ObjectData string `json:"object_data"`

	Annotated bool `json:"annotated" gorm:"default:false"`

	// Synced is false whenever local annotation data has not been pushed
	// to the external ontology yet.
	Synced bool `json:"synced" gorm:"default:true"`

	// AnnotationData is the serialized annotation payload. Opaque here.
	AnnotationData string `json:"annotation_data" gorm:"default:'[]'"`

	// LockedBy holds the session id of the current advisory lock holder,
	// or the empty string when unlocked.
	LockedBy string `json:"locked_by" gorm:"default:''"`
}

// BeforeCreate assigns an ID when none was provided.
func (o *Object) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
