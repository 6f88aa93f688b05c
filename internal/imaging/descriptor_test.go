package imaging

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	return &Resolver{
		Client:      NewImageClient(time.Second),
		LocalPrefix: "/api/annotation/files",
	}
}

func TestDecodeDescriptor(t *testing.T) {
	t.Run("iiif2", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{
			"type": "iiif2",
			"manifest": "https://example.org/manifest",
			"sequence": "https://example.org/seq/1",
			"canvas": "https://example.org/canvas/7",
			"label": "fol. 12r",
			"services": [{"@id": "https://example.org/iiif/img7", "@context": "http://iiif.io/api/image/2/context.json"}]
		}`)
		require.NoError(t, err)
		data, ok := descriptor.(*IIIF2Data)
		require.True(t, ok)
		assert.Equal(t, "fol. 12r", data.Describe())
		assert.Equal(t, "https://example.org/iiif/img7", data.Services[0].BaseURI())
	})

	t.Run("iiif3", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{
			"type": "iiif3",
			"canvas": "https://example.org/canvas/3",
			"page": "https://example.org/page/3",
			"annotation": "https://example.org/anno/3",
			"services": [{"id": "https://example.org/iiif/img3", "type": "ImageService3"}]
		}`)
		require.NoError(t, err)
		data, ok := descriptor.(*IIIF3Data)
		require.True(t, ok)
		assert.Equal(t, "https://example.org/canvas/3", data.Describe())
	})

	t.Run("fs", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{"type": "fs", "path": "scans/box1/page-001.jpg"}`)
		require.NoError(t, err)
		assert.Equal(t, "page-001.jpg", descriptor.Describe())
	})

	t.Run("dh", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{
			"type": "dh",
			"image_url": "https://heraldry.example.org/crest-42.jpg",
			"bindings": {"blazon": "https://heraldry.example.org/blazon/42"}
		}`)
		require.NoError(t, err)
		data, ok := descriptor.(*HeraldryData)
		require.True(t, ok)
		assert.Equal(t, "https://heraldry.example.org/blazon/42", data.Bindings["blazon"])
	})

	t.Run("missing type tag", func(t *testing.T) {
		_, err := DecodeDescriptor(`{"path": "x.jpg"}`)
		assert.ErrorIs(t, err, ErrUnknownSourceType)
	})

	t.Run("unknown type tag", func(t *testing.T) {
		_, err := DecodeDescriptor(`{"type": "carrier-pigeon"}`)
		assert.ErrorIs(t, err, ErrUnknownSourceType)
	})

	t.Run("not json at all", func(t *testing.T) {
		_, err := DecodeDescriptor(`plain text`)
		assert.ErrorIs(t, err, ErrUnknownSourceType)
	})
}

func TestFilesystemData_Resolve(t *testing.T) {
	resolver := testResolver(t)
	descriptor, err := DecodeDescriptor(`{"type": "fs", "path": "scans/page-001.jpg"}`)
	require.NoError(t, err)

	uri, err := descriptor.Resolve(context.Background(), resolver, ImageRequest{Width: 500})
	require.NoError(t, err)
	assert.Equal(t, "/api/annotation/files/scans/page-001.jpg", uri)
	assert.True(t, resolver.IsLocal(uri))
}

func TestHeraldryData_Resolve(t *testing.T) {
	resolver := testResolver(t)
	descriptor, err := DecodeDescriptor(`{"type": "dh", "image_url": "https://heraldry.example.org/crest-42.jpg"}`)
	require.NoError(t, err)

	uri, err := descriptor.Resolve(context.Background(), resolver, ImageRequest{Thumbnail: true, Width: 120})
	require.NoError(t, err)
	assert.Equal(t, "https://heraldry.example.org/crest-42.jpg", uri)
	assert.False(t, resolver.IsLocal(uri))
}

func TestResolveServices_CandidateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"width":1000,"height":500}`)
	}))
	defer server.Close()
	resolver := testResolver(t)

	t.Run("first supported candidate wins", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(fmt.Sprintf(`{
			"type": "iiif3",
			"canvas": "c", "page": "p", "annotation": "a",
			"services": [
				{"id": "%s/unsupported", "type": "ImageService9"},
				{"id": "%s/v3", "type": "ImageService3"},
				{"id": "%s/v2", "type": "ImageService2"}
			]
		}`, server.URL, server.URL, server.URL))
		require.NoError(t, err)

		uri, err := descriptor.Resolve(context.Background(), resolver, ImageRequest{Width: 200})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/v3/full/200,100/0/default.jpg", uri)
	})

	t.Run("context tag selects the family", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(fmt.Sprintf(`{
			"type": "iiif2",
			"manifest": "m", "sequence": "s", "canvas": "c",
			"services": [{"@id": "%s/v1", "@context": "http://iiif.io/api/image/1/context.json"}]
		}`, server.URL))
		require.NoError(t, err)

		uri, err := descriptor.Resolve(context.Background(), resolver, ImageRequest{})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/v1/full/full/0/native.jpg", uri)
	})

	t.Run("no supported candidate", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{
			"type": "iiif3",
			"canvas": "c", "page": "p", "annotation": "a",
			"services": [{"id": "https://example.org/x", "type": "ImageService9"}]
		}`)
		require.NoError(t, err)

		_, err = descriptor.Resolve(context.Background(), testResolver(t), ImageRequest{})
		assert.ErrorIs(t, err, ErrNoCompatibleService)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		descriptor, err := DecodeDescriptor(`{"type": "iiif2", "manifest": "m", "sequence": "s", "canvas": "c", "services": []}`)
		require.NoError(t, err)

		_, err = descriptor.Resolve(context.Background(), testResolver(t), ImageRequest{})
		assert.ErrorIs(t, err, ErrNoCompatibleService)
	})
}
