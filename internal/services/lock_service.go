package services

import (
	"github.com/google/uuid"

	"annotation-service/internal/repository"
)

// LockService arbitrates concurrent editing sessions with a purely
// advisory per-object lock. Nothing prevents a caller from bypassing it;
// the annotation write path consults it, storage does not enforce it.
type LockService struct {
	Repo repository.ObjectRepository
}

// NewLockService creates a new LockService over the given repository.
func NewLockService(repo repository.ObjectRepository) *LockService {
	return &LockService{Repo: repo}
}

// Lock acquires the advisory lock for a session. Acquiring an object
// already held by a different session is a no-op unless force is set;
// callers are expected to check Status afterwards.
func (s *LockService) Lock(objectID uuid.UUID, sessionID string, force bool) error {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return err
	}
	if !force && object.LockedBy != "" && object.LockedBy != sessionID {
		return nil
	}
	return s.Repo.UpdateFields(objectID, map[string]interface{}{
		"locked_by": sessionID,
	})
}

// Status reports whether the given session holds the lock.
func (s *LockService) Status(objectID uuid.UUID, sessionID string) (bool, error) {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return false, err
	}
	return object.LockedBy == sessionID && sessionID != "", nil
}

// Unlock releases the lock. With a session id the clear is match-gated: a
// mismatching session leaves the lock in place. Without a session id the
// clear is unconditional (privileged caller).
func (s *LockService) Unlock(objectID uuid.UUID, sessionID string) error {
	object, err := s.Repo.GetByID(objectID)
	if err != nil {
		return err
	}
	if sessionID != "" && object.LockedBy != sessionID {
		return nil
	}
	return s.Repo.UpdateFields(objectID, map[string]interface{}{
		"locked_by": "",
	})
}
