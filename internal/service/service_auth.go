package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/store"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

// authService handles user registration, credential verification and the
// JWT lifecycle of the document store. The token subject is the user id
// that scopes every collection path.
type authService struct {
	userRepository store.UserRepository
	ids            *utils.UUIDGenerator

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	tokenDuration time.Duration
	bcryptCost    int

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// UserRepository and populated with token parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(userRepository store.UserRepository, cfg config.ServerApp, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		ids:            utils.NewUUIDGenerator(),
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		bcryptCost:     bcrypt.DefaultCost,
		logger:         logger,
	}
}

// RegisterUser creates a new account with a server-assigned UUID and a
// bcrypt hash of the password.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken: see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), a.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	user.UserID = a.ids.Generate()
	user.PasswordHash = string(hash)
	user.Password = ""

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - ErrWrongPassword if the login is unknown or the password does not
//     match; the two cases are not told apart.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.userRepository.FindUserByLogin(ctx, user.Login)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Warn().Str("login", user.Login).Msg("login for unknown user")
		return models.User{}, ErrWrongPassword
	}
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(user.Password)); err != nil {
		log.Warn().Str("id", foundUser.UserID).Str("login", foundUser.Login).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT whose subject is the user id.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string. Any validation failure
// (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
