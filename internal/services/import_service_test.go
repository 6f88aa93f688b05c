package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"annotation-service/internal/models"
	"annotation-service/internal/repository"
)

func newImportService(t *testing.T) (*ImportService, uuid.UUID) {
	t.Helper()
	db := repository.SetupTestDB(t)

	projects := repository.NewProjectRepository(db)
	project := &models.Project{Title: "import tests"}
	require.NoError(t, projects.Create(project))

	service := NewImportService(repository.NewObjectRepository(db), projects, "")
	return service, project.ID
}

func heraldryRecords(uuids ...string) []ImportObject {
	records := make([]ImportObject, 0, len(uuids))
	for _, id := range uuids {
		data := fmt.Sprintf(`{"type":"dh","image_url":"http://upstream.example/%s.jpg"}`, id)
		records = append(records, ImportObject{
			ObjectUUID: id,
			ObjectData: json.RawMessage(data),
		})
	}
	return records
}

func TestImport_AssignsDensePositions(t *testing.T) {
	service, projectID := newImportService(t)

	result, err := service.Import(projectID, heraldryRecords("a", "b", "c"), true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []string{"a", "b", "c"}, result.Added)
	assert.True(t, result.Committed)

	objects, err := service.Objects.List(projectID, repository.ObjectFilters{})
	require.NoError(t, err)
	require.Len(t, objects, 3)
	for i, object := range objects {
		assert.Equal(t, i, object.Position)
	}
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	service, projectID := newImportService(t)

	_, err := service.Import(projectID, heraldryRecords("a", "b"), true)
	require.NoError(t, err)

	result, err := service.Import(projectID, heraldryRecords("a", "b"), true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Known)
	assert.Empty(t, result.Added)

	count, err := service.Objects.Count(projectID, repository.ObjectFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestImport_IncrementalPositionsContinue(t *testing.T) {
	service, projectID := newImportService(t)

	_, err := service.Import(projectID, heraldryRecords("a", "b"), true)
	require.NoError(t, err)

	// second batch overlaps the first: only "c" and "d" are new and their
	// positions continue where the project left off
	result, err := service.Import(projectID, heraldryRecords("b", "c", "d"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Known)
	assert.Equal(t, []string{"c", "d"}, result.Added)

	objects, err := service.Objects.List(projectID, repository.ObjectFilters{})
	require.NoError(t, err)
	require.Len(t, objects, 4)
	assert.Equal(t, 2, objects[2].Position)
	assert.Equal(t, 3, objects[3].Position)
}

func TestImport_DuplicateWithinBatch(t *testing.T) {
	service, projectID := newImportService(t)

	result, err := service.Import(projectID, heraldryRecords("a", "a", "b"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Known)
	assert.Equal(t, []string{"a", "b"}, result.Added)
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	service, projectID := newImportService(t)

	result, err := service.Import(projectID, heraldryRecords("a", "b"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Added)
	assert.False(t, result.Committed)

	count, err := service.Objects.Count(projectID, repository.ObjectFilters{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImport_RejectsUndecodableDescriptors(t *testing.T) {
	service, projectID := newImportService(t)

	records := []ImportObject{{
		ObjectUUID: "bad",
		ObjectData: json.RawMessage(`{"type":"carrier-pigeon"}`),
	}}
	_, err := service.Import(projectID, records, true)
	require.Error(t, err)

	count, err := service.Objects.Count(projectID, repository.ObjectFilters{})
	require.NoError(t, err)
	assert.Zero(t, count, "a rejected batch must not be partially written")
}

func TestImport_UnknownProject(t *testing.T) {
	service, _ := newImportService(t)

	_, err := service.Import(uuid.New(), heraldryRecords("a"), true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
