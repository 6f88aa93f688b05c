package imaging

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Source type tags as persisted in the object_data column.
const (
	SourceIIIF2      = "iiif2"
	SourceIIIF3      = "iiif3"
	SourceFilesystem = "fs"
	SourceHeraldry   = "dh"
)

// ImageService is one candidate image service of a IIIF-sourced object.
// Manifests of different IIIF generations identify services either by a
// type tag (ImageService1/2/3) or by the @context of the Image API.
type ImageService struct {
	ID      string `json:"id,omitempty"`
	AtID    string `json:"@id,omitempty"`
	Type    string `json:"type,omitempty"`
	Context string `json:"@context,omitempty"`
}

// BaseURI returns the service base regardless of which id field the
// source manifest used.
func (s ImageService) BaseURI() string {
	if s.ID != "" {
		return s.ID
	}
	return s.AtID
}

// Resolver carries everything descriptor resolution needs beyond the
// descriptor's own fields: the upstream client and the prefix under which
// filesystem-imported images are served locally.
type Resolver struct {
	Client      *ImageClient
	LocalPrefix string
}

// IsLocal reports whether a resolved URI points at locally served content,
// which the cache must not re-download.
func (r *Resolver) IsLocal(uri string) bool {
	return r.LocalPrefix != "" && strings.HasPrefix(uri, r.LocalPrefix)
}

// SourceDescriptor is the typed source-specific record attached to an
// object. Resolution is a pure function of the descriptor fields and the
// requested usage, aside from the adapter's own metadata fetches, so
// cache keys stay stable across restarts.
type SourceDescriptor interface {
	// Resolve computes the upstream image URI for the requested rendering.
	Resolve(ctx context.Context, r *Resolver, usage ImageRequest) (string, error)

	// Describe returns a human-readable identifier for display only.
	Describe() string
}

// DecodeDescriptor reconstructs the typed descriptor from the persisted
// object data.
func DecodeDescriptor(data string) (SourceDescriptor, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, errors.Wrapf(ErrUnknownSourceType, "undecodable object data: %v", err)
	}

	switch probe.Type {
	case SourceIIIF2:
		var d IIIF2Data
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, errors.Wrapf(ErrUnknownSourceType, "malformed iiif2 data: %v", err)
		}
		return &d, nil
	case SourceIIIF3:
		var d IIIF3Data
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, errors.Wrapf(ErrUnknownSourceType, "malformed iiif3 data: %v", err)
		}
		return &d, nil
	case SourceFilesystem:
		var d FilesystemData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, errors.Wrapf(ErrUnknownSourceType, "malformed fs data: %v", err)
		}
		return &d, nil
	case SourceHeraldry:
		var d HeraldryData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, errors.Wrapf(ErrUnknownSourceType, "malformed dh data: %v", err)
		}
		return &d, nil
	case "":
		return nil, errors.Wrap(ErrUnknownSourceType, "missing type tag")
	default:
		return nil, errors.Wrapf(ErrUnknownSourceType, "type %q", probe.Type)
	}
}

// resolveServices tries the service candidates in declaration order and
// returns the URI from the first one whose family is supported.
func resolveServices(ctx context.Context, r *Resolver, services []ImageService, usage ImageRequest) (string, error) {
	for _, service := range services {
		base := service.BaseURI()
		if base == "" {
			continue
		}
		switch {
		case service.Type == "ImageService3" || strings.Contains(service.Context, "/api/image/3/"):
			return r.Client.ImageURIV3(ctx, base, usage)
		case service.Type == "ImageService2" || strings.Contains(service.Context, "/api/image/2/"):
			return r.Client.ImageURIV2(ctx, base, usage)
		case service.Type == "ImageService1" || strings.Contains(service.Context, "/api/image/1/"):
			return r.Client.ImageURIV1(ctx, base, usage)
		}
	}
	return "", ErrNoCompatibleService
}

// IIIF2Data is the source descriptor of objects imported from IIIF 2.x
// manifests.
type IIIF2Data struct {
	Type     string `json:"type"`
	Manifest string `json:"manifest"`
	Sequence string `json:"sequence"`
	Canvas   string `json:"canvas"`
	Image    string `json:"image,omitempty"`

	// Label is the canvas label, typically a folio name.
	Label string `json:"label,omitempty"`

	Services []ImageService `json:"services"`
}

func (d *IIIF2Data) Resolve(ctx context.Context, r *Resolver, usage ImageRequest) (string, error) {
	return resolveServices(ctx, r, d.Services, usage)
}

func (d *IIIF2Data) Describe() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Canvas
}

// IIIF3Data is the source descriptor of objects imported from IIIF 3.x
// manifests.
type IIIF3Data struct {
	Type       string `json:"type"`
	Manifest   string `json:"manifest,omitempty"`
	Canvas     string `json:"canvas"`
	Page       string `json:"page"`
	Annotation string `json:"annotation"`
	Label      string `json:"label,omitempty"`

	Services []ImageService `json:"services"`
}

func (d *IIIF3Data) Resolve(ctx context.Context, r *Resolver, usage ImageRequest) (string, error) {
	return resolveServices(ctx, r, d.Services, usage)
}

func (d *IIIF3Data) Describe() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Canvas
}

// FilesystemData is the source descriptor of objects imported from a flat
// filesystem directory. The image is served by this service itself under
// the configured local prefix; sizing negotiation does not apply.
type FilesystemData struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

func (d *FilesystemData) Resolve(ctx context.Context, r *Resolver, usage ImageRequest) (string, error) {
	return r.LocalPrefix + "/" + strings.TrimPrefix(d.Path, "/"), nil
}

func (d *FilesystemData) Describe() string {
	return path.Base(d.Path)
}

// HeraldryData is the source descriptor of objects imported from a
// digital-heraldry ontology. The image URL is direct; the bindings are
// template variables consumed by the annotation sync collaborator.
type HeraldryData struct {
	Type     string            `json:"type"`
	ImageURL string            `json:"image_url"`
	Bindings map[string]string `json:"bindings,omitempty"`
}

func (d *HeraldryData) Resolve(ctx context.Context, r *Resolver, usage ImageRequest) (string, error) {
	return d.ImageURL, nil
}

func (d *HeraldryData) Describe() string {
	return d.ImageURL
}

// Compile-time checks that every source kind implements the descriptor
// contract.
var (
	_ SourceDescriptor = (*IIIF2Data)(nil)
	_ SourceDescriptor = (*IIIF3Data)(nil)
	_ SourceDescriptor = (*FilesystemData)(nil)
	_ SourceDescriptor = (*HeraldryData)(nil)
)
