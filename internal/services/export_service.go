package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"annotation-service/internal/imaging"
	"annotation-service/internal/repository"
)

// ExportBundle is the YAML-serializable snapshot of a project's
// annotation state.
type ExportBundle struct {
	Project ProjectExport  `yaml:"project"`
	Labels  []LabelExport  `yaml:"labels"`
	Objects []ObjectExport `yaml:"objects"`
}

type ProjectExport struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

type LabelExport struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Reference string `yaml:"reference,omitempty"`
	Color     string `yaml:"color,omitempty"`
}

type ObjectExport struct {
	ID          string `yaml:"id"`
	ObjectUUID  string `yaml:"object_uuid"`
	Position    int    `yaml:"position"`
	Description string `yaml:"description,omitempty"`
	Annotated   bool   `yaml:"annotated"`
	Annotations string `yaml:"annotations"`

	// Bindings carries the key/value pairs captured at import time for
	// ontology-sourced objects, which the sync target needs back.
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

// ExportService builds annotation bundles and pushes them to the
// configured export sink.
type ExportService struct {
	Projects repository.ProjectRepository
	Labels   repository.LabelRepository
	Objects  repository.ObjectRepository

	minio  *minio.Client // nil when no sink is configured
	bucket string
}

// NewExportService creates a new ExportService. The MinIO client may be
// nil, in which case only local YAML export is available.
func NewExportService(projects repository.ProjectRepository, labels repository.LabelRepository, objects repository.ObjectRepository, minioClient *minio.Client, bucket string) *ExportService {
	return &ExportService{
		Projects: projects,
		Labels:   labels,
		Objects:  objects,
		minio:    minioClient,
		bucket:   bucket,
	}
}

// Bundle assembles the export snapshot of a project.
func (s *ExportService) Bundle(projectID uuid.UUID) (*ExportBundle, error) {
	project, err := s.Projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	labels, err := s.Labels.ListOfProject(projectID)
	if err != nil {
		return nil, err
	}
	objects, err := s.Objects.List(projectID, repository.ObjectFilters{})
	if err != nil {
		return nil, err
	}

	bundle := &ExportBundle{
		Project: ProjectExport{
			ID:          project.ID.String(),
			Title:       project.Title,
			Description: project.Description,
		},
	}
	for _, label := range labels {
		bundle.Labels = append(bundle.Labels, LabelExport{
			ID:        label.ID.String(),
			Name:      label.Name,
			Reference: label.Reference,
			Color:     label.Color,
		})
	}
	for _, object := range objects {
		export := ObjectExport{
			ID:          object.ID.String(),
			ObjectUUID:  object.ObjectUUID,
			Position:    object.Position,
			Annotated:   object.Annotated,
			Annotations: object.AnnotationData,
		}
		if descriptor, err := imaging.DecodeDescriptor(object.ObjectData); err == nil {
			export.Description = descriptor.Describe()
			if heraldry, ok := descriptor.(*imaging.HeraldryData); ok {
				export.Bindings = heraldry.Bindings
			}
		}
		bundle.Objects = append(bundle.Objects, export)
	}
	return bundle, nil
}

// YAML renders the export bundle of a project.
func (s *ExportService) YAML(projectID uuid.UUID) ([]byte, error) {
	bundle, err := s.Bundle(projectID)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(bundle)
}

// Push uploads the YAML bundle to the export sink and marks every object
// of the project as synced. Returns the stored object name.
func (s *ExportService) Push(ctx context.Context, projectID uuid.UUID) (string, error) {
	if s.minio == nil {
		return "", errors.New("export sink is not configured")
	}
	data, err := s.YAML(projectID)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s/annotations-%s.yaml", projectID, time.Now().UTC().Format("20060102T150405Z"))
	_, err = s.minio.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/yaml"})
	if err != nil {
		return "", errors.Wrap(err, "uploading export bundle")
	}

	if err := s.Objects.MarkSynced(projectID); err != nil {
		return "", err
	}
	return name, nil
}
