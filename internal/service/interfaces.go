package service

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/models"
)

// DocumentService is the server side of the remote document store. Every
// call is scoped by the owner's user id.
type DocumentService interface {
	PullAll(ctx context.Context, userID string) (models.Snapshot, error)
	List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error)
	Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error)
	Delete(ctx context.Context, userID string, c models.Collection, id string) error
	CommitBatch(ctx context.Context, userID string, request models.BatchRequest) error
}

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// DocumentServiceWrapper defines middleware composition for DocumentService.
// Implementations wrap an existing DocumentService to add behavior such as
// validation.
type DocumentServiceWrapper interface {
	Wrap(DocumentService) DocumentService
}
