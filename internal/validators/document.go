package validators

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MKhiriev/kharcha-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldID         = "id"
	FieldCollection = "collection"
	FieldPayload    = "payload"
	FieldOp         = "type"
	FieldChanges    = "changes"
	FieldLength     = "length"
	FieldLogin      = "login"
	FieldPassword   = "password"
)

// maxIDLength bounds client-generated ids; UUIDs are 36 characters.
const maxIDLength = 128

var (
	amountFields = []string{"amount", "targetAmount", "saved", "spent"}
	dateFields   = []string{"date", "createdAt", "deadline", "nextDate", "lastProcessed"}
)

// DocumentValidator implements [Validator] for records, pending changes,
// batch requests and credentials.
type DocumentValidator struct {
}

func NewDocumentValidator() Validator {
	return &DocumentValidator{}
}

func (v *DocumentValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)

	case models.PendingChange:
		return v.validateChange(ctx, value, fields...)
	case *models.PendingChange:
		return v.validateChange(ctx, *value, fields...)

	case models.BatchRequest:
		return v.validateBatch(ctx, value, fields...)
	case *models.BatchRequest:
		return v.validateBatch(ctx, *value, fields...)

	case models.User:
		return v.validateUser(ctx, value, fields...)
	case *models.User:
		return v.validateUser(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *DocumentValidator) validateRecord(_ context.Context, record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldCollection, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if err := validateID(record.ID); err != nil {
				return err
			}
		case FieldCollection:
			if !record.Collection.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollection, record.Collection)
			}
		case FieldPayload:
			if record.Payload == nil {
				return ErrEmptyPayload
			}
			if err := validatePayload(record.Payload); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DocumentValidator) validateChange(_ context.Context, change models.PendingChange, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOp, FieldID, FieldCollection, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldOp:
			if !change.Op.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidOp, change.Op)
			}
		case FieldID:
			if err := validateID(change.ID); err != nil {
				return err
			}
		case FieldCollection:
			if !change.Collection.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollection, change.Collection)
			}
		case FieldPayload:
			if change.Op == models.OpDelete {
				if len(change.Data) > 0 {
					return ErrUnexpectedPayload
				}
				continue
			}
			if change.Data == nil {
				return ErrEmptyPayload
			}
			if err := validatePayload(change.Data); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateBatch reports the first invalid change as a
// [models.BatchItemError] so the caller can answer with its index.
func (v *DocumentValidator) validateBatch(ctx context.Context, request models.BatchRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldChanges, FieldLength}
	}

	for _, f := range fields {
		switch f {
		case FieldChanges:
			if len(request.Changes) == 0 {
				return ErrEmptyChanges
			}
			for i, change := range request.Changes {
				if err := v.validateChange(ctx, change); err != nil {
					return &models.BatchItemError{Index: i, Err: err}
				}
			}
		case FieldLength:
			if request.Length != len(request.Changes) {
				return ErrLengthMismatch
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *DocumentValidator) validateUser(_ context.Context, user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if user.Login == "" {
				return ErrEmptyLogin
			}
		case FieldPassword:
			if user.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidID
	}
	for _, r := range id {
		if r == '/' || r == '?' || r == '#' || r < 0x20 {
			return ErrInvalidID
		}
	}
	return nil
}

// validatePayload checks only the well-known fields that are present;
// partial updates carry a subset of them.
func validatePayload(p models.Payload) error {
	for _, name := range amountFields {
		raw, ok := p[name]
		if !ok || raw == nil {
			continue
		}
		if err := validateAmount(raw); err != nil {
			return fmt.Errorf("%w: %s", err, name)
		}
	}

	for _, name := range dateFields {
		raw, ok := p[name]
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return fmt.Errorf("%w: %s", ErrInvalidDate, name)
		}
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDate, name)
		}
	}

	if raw, ok := p["type"]; ok {
		t, _ := raw.(string)
		if t != string(models.TransactionIncome) && t != string(models.TransactionExpense) {
			return ErrInvalidTxType
		}
	}

	return nil
}

func validateAmount(raw any) error {
	switch value := raw.(type) {
	case string:
		if _, err := decimal.NewFromString(value); err != nil {
			return ErrInvalidAmount
		}
	case float64:
		return nil
	default:
		return ErrInvalidAmount
	}
	return nil
}
