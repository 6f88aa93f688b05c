package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"annotation-service/internal/models"
)

// ObjectFilters narrows object queries. Absent fields are not applied;
// present fields compose by logical AND.
type ObjectFilters struct {
	Annotated *bool
	Synced    *bool

	// Search matches case-insensitively as a substring against the
	// object's external identifier and its raw source-descriptor text.
	Search string
}

// ObjectRepository defines methods for object storage operations.
type ObjectRepository interface {
	Create(object *models.Object) error
	CreateAll(objects []*models.Object) error
	GetByID(id uuid.UUID) (*models.Object, error)
	List(projectID uuid.UUID, filters ObjectFilters) ([]models.Object, error)
	Count(projectID uuid.UUID, filters ObjectFilters) (int64, error)
	Update(object *models.Object) error
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
	DeleteOfProject(projectID uuid.UUID) error

	ObjectAt(projectID uuid.UUID, filters ObjectFilters, offset int) (*models.Object, error)
	NavigateFrom(objectID uuid.UUID, filters ObjectFilters, offset int) (*models.Object, error)
	FirstUnannotated(projectID uuid.UUID) (*models.Object, error)
	KnownObjectUUIDs(projectID uuid.UUID) (map[string]bool, error)
	MarkSynced(projectID uuid.UUID) error
}

// ObjectRepositoryImpl provides methods to interact with the Object model
// in the database.
type ObjectRepositoryImpl struct {
	db *gorm.DB
}

// NewObjectRepository creates a new ObjectRepositoryImpl instance with the
// provided GORM database connection.
func NewObjectRepository(db *gorm.DB) *ObjectRepositoryImpl {
	return &ObjectRepositoryImpl{db: db}
}

// applyFilters narrows a query to the rows passing the given filters.
func applyFilters(tx *gorm.DB, filters ObjectFilters) *gorm.DB {
	if filters.Annotated != nil {
		tx = tx.Where("annotated = ?", *filters.Annotated)
	}
	if filters.Synced != nil {
		tx = tx.Where("synced = ?", *filters.Synced)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		tx = tx.Where("LOWER(object_uuid) LIKE ? OR LOWER(object_data) LIKE ?", pattern, pattern)
	}
	return tx
}

// Create inserts a new Object.
func (r *ObjectRepositoryImpl) Create(object *models.Object) error {
	return r.db.Create(object).Error
}

// CreateAll inserts a batch of Objects.
func (r *ObjectRepositoryImpl) CreateAll(objects []*models.Object) error {
	if len(objects) == 0 {
		return nil
	}
	return r.db.Create(objects).Error
}

// GetByID retrieves an Object by its ID.
func (r *ObjectRepositoryImpl) GetByID(id uuid.UUID) (*models.Object, error) {
	var object models.Object
	err := r.db.First(&object, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &object, nil
}

// List retrieves the Objects of a project passing the filters, ordered by
// position ascending.
func (r *ObjectRepositoryImpl) List(projectID uuid.UUID, filters ObjectFilters) ([]models.Object, error) {
	var objects []models.Object
	tx := applyFilters(r.db.Where("project_id = ?", projectID), filters)
	err := tx.Order("position ASC").Find(&objects).Error
	return objects, err
}

// Count counts the Objects of a project passing the filters.
func (r *ObjectRepositoryImpl) Count(projectID uuid.UUID, filters ObjectFilters) (int64, error) {
	var count int64
	tx := applyFilters(r.db.Model(&models.Object{}).Where("project_id = ?", projectID), filters)
	err := tx.Count(&count).Error
	return count, err
}

// Update saves an existing Object. Last writer wins; no optimistic
// versioning.
func (r *ObjectRepositoryImpl) Update(object *models.Object) error {
	return r.db.Save(object).Error
}

// UpdateFields updates selected columns of an Object. Used for lock and
// annotation writes where zero values (empty locked_by, false synced)
// must be persisted.
func (r *ObjectRepositoryImpl) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.Object{}).Where("id = ?", id).Updates(fields).Error
}

// Delete deletes an Object by its ID.
func (r *ObjectRepositoryImpl) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Object{}, "id = ?", id).Error
}

// DeleteOfProject deletes all Objects of a project.
func (r *ObjectRepositoryImpl) DeleteOfProject(projectID uuid.UUID) error {
	return r.db.Delete(&models.Object{}, "project_id = ?", projectID).Error
}

// ObjectAt returns the object at the 0-based offset among the filtered
// objects of a project, ordered by position ascending.
func (r *ObjectRepositoryImpl) ObjectAt(projectID uuid.UUID, filters ObjectFilters, offset int) (*models.Object, error) {
	if offset < 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var object models.Object
	tx := applyFilters(r.db.Where("project_id = ?", projectID), filters)
	err := tx.Order("position ASC").Offset(offset).First(&object).Error
	if err != nil {
		return nil, err
	}
	return &object, nil
}

// NavigateFrom returns the object that is offset filtered matches away
// from the anchor, not counting the anchor itself. This is a rank query
// within the filtered, position-ordered sequence, not arithmetic on
// position values: any number of rows between anchor and target may be
// filtered out.
func (r *ObjectRepositoryImpl) NavigateFrom(objectID uuid.UUID, filters ObjectFilters, offset int) (*models.Object, error) {
	anchor, err := r.GetByID(objectID)
	if err != nil {
		return nil, err
	}
	if offset == 0 {
		return anchor, nil
	}

	var object models.Object
	tx := applyFilters(r.db.Where("project_id = ?", anchor.ProjectID), filters)
	if offset > 0 {
		tx = tx.Where("position > ?", anchor.Position).Order("position ASC").Offset(offset - 1)
	} else {
		tx = tx.Where("position < ?", anchor.Position).Order("position DESC").Offset(-offset - 1)
	}
	if err := tx.First(&object).Error; err != nil {
		return nil, err
	}
	return &object, nil
}

// FirstUnannotated returns an arbitrary object of the project that has not
// been finished yet.
func (r *ObjectRepositoryImpl) FirstUnannotated(projectID uuid.UUID) (*models.Object, error) {
	var object models.Object
	err := r.db.Where("project_id = ? AND annotated = ?", projectID, false).
		Order("position ASC").First(&object).Error
	if err != nil {
		return nil, err
	}
	return &object, nil
}

// KnownObjectUUIDs returns the set of source-system identifiers already
// imported into the project. Consulted to keep re-imports idempotent.
func (r *ObjectRepositoryImpl) KnownObjectUUIDs(projectID uuid.UUID) (map[string]bool, error) {
	var uuids []string
	err := r.db.Model(&models.Object{}).Where("project_id = ?", projectID).
		Pluck("object_uuid", &uuids).Error
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(uuids))
	for _, u := range uuids {
		known[u] = true
	}
	return known, nil
}

// MarkSynced flags every object of the project as pushed.
func (r *ObjectRepositoryImpl) MarkSynced(projectID uuid.UUID) error {
	return r.db.Model(&models.Object{}).Where("project_id = ?", projectID).
		Update("synced", true).Error
}

var _ ObjectRepository = (*ObjectRepositoryImpl)(nil)
