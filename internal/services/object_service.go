package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"annotation-service/internal/cache"
	"annotation-service/internal/imaging"
	"annotation-service/internal/models"
	"annotation-service/internal/repository"
)

// ErrLocked marks an annotation write rejected because the object is held
// by a different editing session.
var ErrLocked = errors.New("object locked by another session")

// ImageLocation is the result of resolving an object's image for a
// requested rendering. Exactly one of the fields is set: a direct URI for
// uncached content, or a cache token the client redeems against the
// cached-image endpoint.
type ImageLocation struct {
	URI        string `json:"uri,omitempty"`
	CacheToken string `json:"cache_token,omitempty"`
}

// ObjectService provides methods for managing annotation objects and
// resolving their images.
type ObjectService struct {
	Repo     repository.ObjectRepository
	Resolver *imaging.Resolver
	Cache    *cache.Manager // nil when the image cache is disabled
}

// NewObjectService creates a new ObjectService with the given repository,
// resolver and cache manager. The cache manager may be nil.
func NewObjectService(repo repository.ObjectRepository, resolver *imaging.Resolver, cacheManager *cache.Manager) *ObjectService {
	return &ObjectService{
		Repo:     repo,
		Resolver: resolver,
		Cache:    cacheManager,
	}
}

// GetObject retrieves a single object.
func (s *ObjectService) GetObject(id uuid.UUID) (*models.Object, error) {
	return s.Repo.GetByID(id)
}

// ListObjects retrieves the filtered objects of a project in position
// order.
func (s *ObjectService) ListObjects(projectID uuid.UUID, filters repository.ObjectFilters) ([]models.Object, error) {
	return s.Repo.List(projectID, filters)
}

// CountObjects counts the filtered objects of a project.
func (s *ObjectService) CountObjects(projectID uuid.UUID, filters repository.ObjectFilters) (int64, error) {
	return s.Repo.Count(projectID, filters)
}

// ObjectAt returns the object at the given 0-based offset among the
// filtered objects of a project.
func (s *ObjectService) ObjectAt(projectID uuid.UUID, filters repository.ObjectFilters, offset int) (*models.Object, error) {
	return s.Repo.ObjectAt(projectID, filters, offset)
}

// NavigateFrom returns the object offset filtered matches away from the
// anchor object, forward or backward.
func (s *ObjectService) NavigateFrom(objectID uuid.UUID, filters repository.ObjectFilters, offset int) (*models.Object, error) {
	return s.Repo.NavigateFrom(objectID, filters, offset)
}

// FirstUnannotated returns an unfinished object of the project.
func (s *ObjectService) FirstUnannotated(projectID uuid.UUID) (*models.Object, error) {
	return s.Repo.FirstUnannotated(projectID)
}

// DeleteObject deletes an object.
func (s *ObjectService) DeleteObject(id uuid.UUID) error {
	return s.Repo.Delete(id)
}

// Describe returns the human-readable identifier of an object's source,
// for display only.
func (s *ObjectService) Describe(object *models.Object) string {
	descriptor, err := imaging.DecodeDescriptor(object.ObjectData)
	if err != nil {
		return ""
	}
	return descriptor.Describe()
}

// GetImageURI resolves an object's image for the requested rendering.
// Locally served content and cache-disabled deployments yield a direct
// URI; everything else yields a cache token, deferring the upstream
// resolution to the first cache miss.
func (s *ObjectService) GetImageURI(ctx context.Context, objectID uuid.UUID, usage imaging.ImageRequest) (*ImageLocation, error) {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return nil, err
	}
	descriptor, err := imaging.DecodeDescriptor(object.ObjectData)
	if err != nil {
		return nil, err
	}

	// Filesystem-sourced objects resolve to local URIs; caching them
	// would download from ourselves.
	if _, local := descriptor.(*imaging.FilesystemData); local || s.Cache == nil {
		uri, err := descriptor.Resolve(ctx, s.Resolver, usage)
		if err != nil {
			return nil, err
		}
		return &ImageLocation{URI: uri}, nil
	}

	return &ImageLocation{CacheToken: cache.Encode(object.ID.String(), usage)}, nil
}

// GetCachedFile redeems a cache token for a local file path, downloading
// the image on a miss.
func (s *ObjectService) GetCachedFile(ctx context.Context, token string) (string, error) {
	if s.Cache == nil {
		return "", errors.New("image cache is disabled")
	}
	return s.Cache.Get(ctx, token, s.resolveUpstream)
}

// resolveUpstream is the ResolveFunc handed to the cache manager.
func (s *ObjectService) resolveUpstream(ctx context.Context, objectID string, usage imaging.ImageRequest) (string, error) {
	id, err := uuid.Parse(objectID)
	if err != nil {
		return "", errors.Wrapf(err, "invalid object id in cache token")
	}
	object, err := s.Repo.GetByID(id)
	if err != nil {
		return "", err
	}
	descriptor, err := imaging.DecodeDescriptor(object.ObjectData)
	if err != nil {
		return "", err
	}
	return descriptor.Resolve(ctx, s.Resolver, usage)
}

// GetAnnotations returns the serialized annotation payload of an object.
func (s *ObjectService) GetAnnotations(objectID uuid.UUID) (string, error) {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return "", err
	}
	return object.AnnotationData, nil
}

// StoreAnnotations writes the annotation payload of an object. A write
// carrying a session id is rejected with ErrLocked when a different
// session holds the advisory lock; a write with no session id is treated
// as a privileged caller and always accepted. Writing clears the synced
// flag until the next export push.
func (s *ObjectService) StoreAnnotations(objectID uuid.UUID, sessionID, annotationData string) error {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return err
	}
	if sessionID != "" && object.LockedBy != "" && object.LockedBy != sessionID {
		return errors.Wrapf(ErrLocked, "object %s held by another session", objectID)
	}
	return s.Repo.UpdateFields(objectID, map[string]interface{}{
		"annotation_data": annotationData,
		"synced":          false,
	})
}

// Finish marks an object annotated and unconditionally clears the
// advisory lock, ending the editing session.
func (s *ObjectService) Finish(objectID uuid.UUID) error {
	if _, err := s.Repo.GetByID(objectID); err != nil {
		return err
	}
	return s.Repo.UpdateFields(objectID, map[string]interface{}{
		"annotated": true,
		"locked_by": "",
	})
}
