package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"annotation-service/internal/extraction"
	"annotation-service/internal/imaging"
	"annotation-service/internal/models"
	"annotation-service/internal/repository"
)

// ImportObject is one parsed object record handed over by an import
// collaborator: the source-system identifier plus the serialized source
// descriptor. Manifest and ontology walking happen upstream.
type ImportObject struct {
	ObjectUUID string          `json:"object_uuid"`
	ObjectData json.RawMessage `json:"object_data"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Total     int      `json:"total"` // records offered
	Known     int      `json:"known"` // skipped as duplicates
	Added     []string `json:"added"` // object_uuids inserted (or that would be, without commit)
	Committed bool     `json:"committed"`
}

// ImportService inserts parsed object records into a project, assigning
// dense positions and deduplicating on the source-system identifier so
// re-running an import is idempotent.
type ImportService struct {
	Objects  repository.ObjectRepository
	Projects repository.ProjectRepository

	// localFilePath backs archive extraction for filesystem imports.
	localFilePath string
}

// NewImportService creates a new ImportService.
func NewImportService(objects repository.ObjectRepository, projects repository.ProjectRepository, localFilePath string) *ImportService {
	return &ImportService{
		Objects:       objects,
		Projects:      projects,
		localFilePath: localFilePath,
	}
}

// Import inserts the given records into the project. Records whose
// object_uuid is already present in the project are skipped. New objects
// receive position = current count + index, so positions stay dense and
// reflect insertion order. With commit unset the result is computed but
// nothing is written.
func (s *ImportService) Import(projectID uuid.UUID, records []ImportObject, commit bool) (*ImportResult, error) {
	if _, err := s.Projects.GetByID(projectID); err != nil {
		return nil, err
	}

	known, err := s.Objects.KnownObjectUUIDs(projectID)
	if err != nil {
		return nil, err
	}
	count, err := s.Objects.Count(projectID, repository.ObjectFilters{})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Total: len(records)}
	var inserts []*models.Object
	for _, record := range records {
		// reject undecodable descriptors before anything is written
		if _, err := imaging.DecodeDescriptor(string(record.ObjectData)); err != nil {
			return nil, errors.Wrapf(err, "record %q", record.ObjectUUID)
		}
		if known[record.ObjectUUID] {
			result.Known++
			continue
		}
		known[record.ObjectUUID] = true
		inserts = append(inserts, &models.Object{
			ProjectID:  projectID,
			ObjectUUID: record.ObjectUUID,
			Position:   int(count) + len(inserts),
			ObjectData: string(record.ObjectData),
			Synced:     true,
		})
		result.Added = append(result.Added, record.ObjectUUID)
	}

	if commit {
		if err := s.Objects.CreateAll(inserts); err != nil {
			return nil, err
		}
		result.Committed = true
	}
	return result, nil
}

// ImportArchive extracts an uploaded image archive under the local file
// area and imports one filesystem object per image.
func (s *ImportService) ImportArchive(ctx context.Context, projectID uuid.UUID, archivePath string, commit bool) (*ImportResult, error) {
	if s.localFilePath == "" {
		return nil, errors.New("LOCAL_FILE_PATH is not configured")
	}
	files, err := extraction.ExtractImages(ctx, archivePath, s.localFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "extracting archive")
	}
	return s.Import(projectID, filesystemRecords(files), commit)
}

// ImportDirectory imports the images of a directory already present under
// the local file area.
func (s *ImportService) ImportDirectory(projectID uuid.UUID, commit bool) (*ImportResult, error) {
	if s.localFilePath == "" {
		return nil, errors.New("LOCAL_FILE_PATH is not configured")
	}
	files, err := extraction.ListImages(s.localFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "listing local files")
	}
	return s.Import(projectID, filesystemRecords(files), commit)
}

// filesystemRecords builds fs-descriptor records for the given relative
// paths. The path doubles as the source-system identifier.
func filesystemRecords(files []string) []ImportObject {
	records := make([]ImportObject, 0, len(files))
	for _, file := range files {
		data, _ := json.Marshal(imaging.FilesystemData{
			Type: imaging.SourceFilesystem,
			Path: file,
		})
		records = append(records, ImportObject{
			ObjectUUID: file,
			ObjectData: data,
		})
	}
	return records
}
