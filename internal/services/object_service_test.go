package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotation-service/internal/cache"
	"annotation-service/internal/imaging"
	"annotation-service/internal/models"
	"annotation-service/internal/repository"
)

func newObjectService(t *testing.T, withCache bool) (*ObjectService, *models.Project) {
	t.Helper()
	db := repository.SetupTestDB(t)

	project := &models.Project{Title: "object tests"}
	require.NoError(t, repository.NewProjectRepository(db).Create(project))

	var manager *cache.Manager
	if withCache {
		var err error
		manager, err = cache.NewManager(t.TempDir(), 0, 3, time.Second)
		require.NoError(t, err)
	}
	resolver := &imaging.Resolver{
		Client:      imaging.NewImageClient(time.Second),
		LocalPrefix: "/api/annotation/files",
	}
	service := NewObjectService(repository.NewObjectRepository(db), resolver, manager)
	return service, project
}

func TestGetImageURI_FilesystemBypassesCache(t *testing.T) {
	service, project := newObjectService(t, true)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "scans/folio-001.jpg",
		ObjectData: `{"type":"fs","path":"scans/folio-001.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))

	location, err := service.GetImageURI(context.Background(), object.ID, imaging.ImageRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/api/annotation/files/scans/folio-001.jpg", location.URI)
	assert.Empty(t, location.CacheToken, "locally served content must not be routed through the cache")
}

func TestGetImageURI_CacheDisabledYieldsDirectURI(t *testing.T) {
	service, project := newObjectService(t, false)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "obj",
		ObjectData: `{"type":"dh","image_url":"http://upstream.example/shield.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))

	location, err := service.GetImageURI(context.Background(), object.ID, imaging.ImageRequest{})
	require.NoError(t, err)
	assert.Equal(t, "http://upstream.example/shield.jpg", location.URI)
	assert.Empty(t, location.CacheToken)
}

func TestGetImageURI_IssuesCacheToken(t *testing.T) {
	service, project := newObjectService(t, true)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "obj",
		ObjectData: `{"type":"dh","image_url":"http://upstream.example/shield.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))

	usage := imaging.ImageRequest{Thumbnail: true, Width: 120}
	location, err := service.GetImageURI(context.Background(), object.ID, usage)
	require.NoError(t, err)
	assert.Empty(t, location.URI)

	objectID, decoded, err := cache.Decode(location.CacheToken)
	require.NoError(t, err)
	assert.Equal(t, object.ID.String(), objectID)
	assert.Equal(t, usage, decoded)
}

func TestGetCachedFile_DownloadsOnMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "shield bytes")
	}))
	defer server.Close()

	service, project := newObjectService(t, true)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "obj",
		ObjectData: fmt.Sprintf(`{"type":"dh","image_url":"%s/shield.jpg"}`, server.URL),
	}
	require.NoError(t, service.Repo.Create(object))

	location, err := service.GetImageURI(context.Background(), object.ID, imaging.ImageRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, location.CacheToken)

	path, err := service.GetCachedFile(context.Background(), location.CacheToken)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shield bytes", string(content))
}

func TestStoreAnnotations_LockGate(t *testing.T) {
	service, project := newObjectService(t, false)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "obj",
		ObjectData: `{"type":"dh","image_url":"http://upstream.example/shield.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))
	locks := NewLockService(service.Repo)
	require.NoError(t, locks.Lock(object.ID, "session-a", false))

	t.Run("foreign session is rejected", func(t *testing.T) {
		err := service.StoreAnnotations(object.ID, "session-b", `[{"label":"lion"}]`)
		assert.ErrorIs(t, err, ErrLocked)
	})

	t.Run("holder writes", func(t *testing.T) {
		require.NoError(t, service.StoreAnnotations(object.ID, "session-a", `[{"label":"lion"}]`))
		stored, err := service.GetObject(object.ID)
		require.NoError(t, err)
		assert.Equal(t, `[{"label":"lion"}]`, stored.AnnotationData)
		assert.False(t, stored.Synced, "a write must clear the synced flag")
	})

	t.Run("sessionless write is privileged", func(t *testing.T) {
		require.NoError(t, service.StoreAnnotations(object.ID, "", `[]`))
	})
}

func TestFinish_MarksAnnotatedAndReleasesLock(t *testing.T) {
	service, project := newObjectService(t, false)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "obj",
		ObjectData: `{"type":"dh","image_url":"http://upstream.example/shield.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))
	locks := NewLockService(service.Repo)
	require.NoError(t, locks.Lock(object.ID, "session-a", false))

	require.NoError(t, service.Finish(object.ID))

	stored, err := service.GetObject(object.ID)
	require.NoError(t, err)
	assert.True(t, stored.Annotated)
	assert.Empty(t, stored.LockedBy)
}

func TestDescribe(t *testing.T) {
	service, project := newObjectService(t, false)
	object := &models.Object{
		ProjectID:  project.ID,
		ObjectUUID: "scans/folio-001.jpg",
		ObjectData: `{"type":"fs","path":"scans/folio-001.jpg"}`,
	}
	require.NoError(t, service.Repo.Create(object))

	assert.Equal(t, "folio-001.jpg", service.Describe(object))
}
