package http

import (
	"context"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/models"
)

// ─────────────────────────────────────────────
// Service mocks. Each method field can be overridden per test case.
// ─────────────────────────────────────────────

type mockAuthService struct {
	registerUserFn func(ctx context.Context, user models.User) (models.User, error)
	loginFn        func(ctx context.Context, user models.User) (models.User, error)
	createTokenFn  func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn   func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	return m.registerUserFn(ctx, user)
}

func (m *mockAuthService) Login(ctx context.Context, user models.User) (models.User, error) {
	return m.loginFn(ctx, user)
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

type mockDocumentService struct {
	pullAllFn     func(ctx context.Context, userID string) (models.Snapshot, error)
	listFn        func(ctx context.Context, userID string, c models.Collection) ([]models.Record, error)
	upsertFn      func(ctx context.Context, userID string, record models.Record) (models.Record, error)
	deleteFn      func(ctx context.Context, userID string, c models.Collection, id string) error
	commitBatchFn func(ctx context.Context, userID string, request models.BatchRequest) error
}

func (m *mockDocumentService) PullAll(ctx context.Context, userID string) (models.Snapshot, error) {
	return m.pullAllFn(ctx, userID)
}

func (m *mockDocumentService) List(ctx context.Context, userID string, c models.Collection) ([]models.Record, error) {
	return m.listFn(ctx, userID, c)
}

func (m *mockDocumentService) Upsert(ctx context.Context, userID string, record models.Record) (models.Record, error) {
	return m.upsertFn(ctx, userID, record)
}

func (m *mockDocumentService) Delete(ctx context.Context, userID string, c models.Collection, id string) error {
	return m.deleteFn(ctx, userID, c, id)
}

func (m *mockDocumentService) CommitBatch(ctx context.Context, userID string, request models.BatchRequest) error {
	return m.commitBatchFn(ctx, userID, request)
}

type mockAppInfoService struct {
	version string
}

func (m *mockAppInfoService) GetAppVersion(_ context.Context) string {
	return m.version
}

// tokenFor accepts any bearer token and authenticates it as userID.
func tokenFor(userID string) *mockAuthService {
	return &mockAuthService{
		parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
			return models.Token{UserID: userID}, nil
		},
	}
}

func newTestServices(auth service.AuthService, docs service.DocumentService) *service.Services {
	return &service.Services{
		AuthService:     auth,
		DocumentService: docs,
		AppInfoService:  &mockAppInfoService{version: "test-version"},
	}
}

func newServicesHandler(auth service.AuthService, docs service.DocumentService) *Handler {
	return NewHandler(newTestServices(auth, docs), "", nil, logger.Nop())
}
