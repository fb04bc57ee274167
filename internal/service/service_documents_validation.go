package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/kharcha-sync/internal/validators"
	"github.com/MKhiriev/kharcha-sync/models"
)

// DocumentValidationService rejects malformed input before it reaches the
// wrapped DocumentService.
type DocumentValidationService struct {
	inner     DocumentService
	validator validators.Validator
}

func NewDocumentValidationService() DocumentServiceWrapper {
	return &DocumentValidationService{
		validator: validators.NewDocumentValidator(),
	}
}

func (v *DocumentValidationService) PullAll(ctx context.Context, userID string) (models.Snapshot, error) {
	if userID == "" {
		return nil, ErrInvalidDataProvided
	}
	return v.inner.PullAll(ctx, userID)
}

func (v *DocumentValidationService) List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error) {
	if userID == "" {
		return nil, ErrInvalidDataProvided
	}
	if err := v.validator.Validate(ctx, models.Record{Collection: c}, validators.FieldCollection); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.List(ctx, userID, c)
}

func (v *DocumentValidationService) Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error) {
	if userID == "" {
		return models.Record{}, ErrInvalidDataProvided
	}
	if err := v.validator.Validate(ctx, record); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.Upsert(ctx, userID, record)
}

func (v *DocumentValidationService) Delete(ctx context.Context, userID string, c models.Collection, id string) error {
	if userID == "" {
		return ErrInvalidDataProvided
	}
	record := models.Record{ID: id, Collection: c}
	if err := v.validator.Validate(ctx, record, validators.FieldID, validators.FieldCollection); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.Delete(ctx, userID, c, id)
}

func (v *DocumentValidationService) CommitBatch(ctx context.Context, userID string, request models.BatchRequest) error {
	if userID == "" {
		return ErrInvalidDataProvided
	}
	if err := v.validator.Validate(ctx, request); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.CommitBatch(ctx, userID, request)
}

func (v *DocumentValidationService) Wrap(inner DocumentService) DocumentService {
	v.inner = inner
	return v
}
