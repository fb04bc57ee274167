package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/models"
)

type documentService struct {
	documents store.DocumentRepository

	logger *logger.Logger
}

func NewDocumentService(documents store.DocumentRepository, logger *logger.Logger) DocumentService {
	return &documentService{documents: documents, logger: logger}
}

func (d *documentService) PullAll(ctx context.Context, userID string) (models.Snapshot, error) {
	return d.documents.ListAll(ctx, userID)
}

func (d *documentService) List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error) {
	return d.documents.List(ctx, userID, c)
}

func (d *documentService) Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error) {
	return d.documents.Upsert(ctx, userID, record)
}

func (d *documentService) Delete(ctx context.Context, userID string, c models.Collection, id string) error {
	return d.documents.Delete(ctx, userID, c, id)
}

func (d *documentService) CommitBatch(ctx context.Context, userID string, request models.BatchRequest) error {
	if err := d.documents.CommitBatch(ctx, userID, request.Changes); err != nil {
		return fmt.Errorf("batch of %d changes not committed: %w", len(request.Changes), err)
	}
	return nil
}
