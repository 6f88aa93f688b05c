package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"annotation-service/internal/models"
)

func boolPtr(b bool) *bool { return &b }

// seedProject inserts a project with n objects whose positions reflect
// insertion order. Every third object starts out annotated.
func seedProject(t *testing.T, db *gorm.DB, n int) (uuid.UUID, []models.Object) {
	t.Helper()

	project := models.Project{Title: "test project"}
	require.NoError(t, db.Create(&project).Error)

	repo := NewObjectRepository(db)
	objects := make([]models.Object, 0, n)
	for i := 0; i < n; i++ {
		object := models.Object{
			ProjectID:  project.ID,
			ObjectUUID: fmt.Sprintf("https://images.example.org/folio-%03d", i),
			Position:   i,
			ObjectData: fmt.Sprintf(`{"type":"dh","image_url":"https://images.example.org/folio-%03d.jpg"}`, i),
			Annotated:  i%3 == 0,
			Synced:     true,
		}
		require.NoError(t, repo.Create(&object))
		objects = append(objects, object)
	}
	return project.ID, objects
}

func TestObjectRepository_PositionsUniqueAndIncreasing(t *testing.T) {
	db := SetupTestDB(t)
	projectID, _ := seedProject(t, db, 10)

	repo := NewObjectRepository(db)
	objects, err := repo.List(projectID, ObjectFilters{})
	require.NoError(t, err)
	require.Len(t, objects, 10)

	seen := make(map[int]bool)
	last := -1
	for _, object := range objects {
		assert.False(t, seen[object.Position], "position %d assigned twice", object.Position)
		seen[object.Position] = true
		assert.Greater(t, object.Position, last)
		last = object.Position
	}
}

func TestObjectRepository_ObjectAt(t *testing.T) {
	db := SetupTestDB(t)
	projectID, objects := seedProject(t, db, 9)
	repo := NewObjectRepository(db)

	t.Run("unfiltered offset", func(t *testing.T) {
		object, err := repo.ObjectAt(projectID, ObjectFilters{}, 4)
		require.NoError(t, err)
		assert.Equal(t, objects[4].ID, object.ID)
	})

	t.Run("filtered offset counts only matches", func(t *testing.T) {
		// annotated objects sit at positions 0, 3, 6
		object, err := repo.ObjectAt(projectID, ObjectFilters{Annotated: boolPtr(true)}, 2)
		require.NoError(t, err)
		assert.Equal(t, 6, object.Position)
	})

	t.Run("offset out of range", func(t *testing.T) {
		_, err := repo.ObjectAt(projectID, ObjectFilters{}, 99)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := repo.ObjectAt(projectID, ObjectFilters{}, -1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := repo.ObjectAt(projectID, ObjectFilters{Search: "no such object"}, 0)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestObjectRepository_NavigateFrom(t *testing.T) {
	db := SetupTestDB(t)
	_, objects := seedProject(t, db, 9)
	repo := NewObjectRepository(db)

	t.Run("offset zero returns the anchor", func(t *testing.T) {
		object, err := repo.NavigateFrom(objects[4].ID, ObjectFilters{Search: "irrelevant"}, 0)
		require.NoError(t, err)
		assert.Equal(t, objects[4].ID, object.ID)
	})

	t.Run("forward skips filtered objects", func(t *testing.T) {
		// next annotated after position 0 is position 3, second next is 6
		object, err := repo.NavigateFrom(objects[0].ID, ObjectFilters{Annotated: boolPtr(true)}, 2)
		require.NoError(t, err)
		assert.Equal(t, 6, object.Position)
	})

	t.Run("backward skips filtered objects", func(t *testing.T) {
		object, err := repo.NavigateFrom(objects[8].ID, ObjectFilters{Annotated: boolPtr(true)}, -2)
		require.NoError(t, err)
		assert.Equal(t, 3, object.Position)
	})

	t.Run("anchor itself is not counted", func(t *testing.T) {
		// anchor at position 3 is annotated; +1 must land on 6, not 3
		object, err := repo.NavigateFrom(objects[3].ID, ObjectFilters{Annotated: boolPtr(true)}, 1)
		require.NoError(t, err)
		assert.Equal(t, 6, object.Position)
	})

	t.Run("forward then backward returns to the anchor", func(t *testing.T) {
		filters := ObjectFilters{Annotated: boolPtr(false)}
		next, err := repo.NavigateFrom(objects[1].ID, filters, 1)
		require.NoError(t, err)
		back, err := repo.NavigateFrom(next.ID, filters, -1)
		require.NoError(t, err)
		assert.Equal(t, objects[1].ID, back.ID)
	})

	t.Run("overrun forward", func(t *testing.T) {
		_, err := repo.NavigateFrom(objects[8].ID, ObjectFilters{}, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("overrun backward", func(t *testing.T) {
		_, err := repo.NavigateFrom(objects[0].ID, ObjectFilters{}, -1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("unknown anchor", func(t *testing.T) {
		_, err := repo.NavigateFrom(uuid.New(), ObjectFilters{}, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestObjectRepository_Filters(t *testing.T) {
	db := SetupTestDB(t)
	projectID, objects := seedProject(t, db, 6)
	repo := NewObjectRepository(db)

	require.NoError(t, repo.UpdateFields(objects[1].ID, map[string]interface{}{"synced": false}))

	t.Run("annotated filter", func(t *testing.T) {
		count, err := repo.Count(projectID, ObjectFilters{Annotated: boolPtr(true)})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count) // positions 0 and 3
	})

	t.Run("synced filter", func(t *testing.T) {
		unsynced, err := repo.List(projectID, ObjectFilters{Synced: boolPtr(false)})
		require.NoError(t, err)
		require.Len(t, unsynced, 1)
		assert.Equal(t, objects[1].ID, unsynced[0].ID)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		found, err := repo.List(projectID, ObjectFilters{Search: "FOLIO-002"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, objects[2].ID, found[0].ID)
	})

	t.Run("search matches descriptor text", func(t *testing.T) {
		found, err := repo.List(projectID, ObjectFilters{Search: "folio-004.jpg"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, objects[4].ID, found[0].ID)
	})

	t.Run("filters compose by AND", func(t *testing.T) {
		count, err := repo.Count(projectID, ObjectFilters{
			Annotated: boolPtr(true),
			Search:    "folio-003",
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func TestObjectRepository_KnownObjectUUIDs(t *testing.T) {
	db := SetupTestDB(t)
	projectID, objects := seedProject(t, db, 3)
	repo := NewObjectRepository(db)

	known, err := repo.KnownObjectUUIDs(projectID)
	require.NoError(t, err)
	require.Len(t, known, 3)
	for _, object := range objects {
		assert.True(t, known[object.ObjectUUID])
	}
}

func TestObjectRepository_MarkSynced(t *testing.T) {
	db := SetupTestDB(t)
	projectID, objects := seedProject(t, db, 3)
	repo := NewObjectRepository(db)

	for _, object := range objects {
		require.NoError(t, repo.UpdateFields(object.ID, map[string]interface{}{"synced": false}))
	}
	require.NoError(t, repo.MarkSynced(projectID))

	count, err := repo.Count(projectID, ObjectFilters{Synced: boolPtr(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestObjectRepository_UpdateFieldsPersistsZeroValues(t *testing.T) {
	db := SetupTestDB(t)
	_, objects := seedProject(t, db, 1)
	repo := NewObjectRepository(db)

	require.NoError(t, repo.UpdateFields(objects[0].ID, map[string]interface{}{"locked_by": "session-a"}))
	require.NoError(t, repo.UpdateFields(objects[0].ID, map[string]interface{}{"locked_by": ""}))

	object, err := repo.GetByID(objects[0].ID)
	require.NoError(t, err)
	assert.Empty(t, object.LockedBy)
}
