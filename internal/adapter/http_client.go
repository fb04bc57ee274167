// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/kharcha-sync/internal/config"
	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

const (
	pathRegister   = "/api/auth/register"
	pathLogin      = "/api/auth/login"
	pathPing       = "/api/ping"
	pathUserData   = "/api/users/{userID}/data"
	pathUserBatch  = "/api/users/{userID}/data/batch"
	pathUserRecord = "/api/users/{userID}/data/{collection}/{id}"
)

type httpGateway struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPGateway constructs the HTTP/REST implementation of [RemoteGateway].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the request timeout. Request bodies are signed with the
// HashSHA256 header when appCfg.HashKey is set.
func NewHTTPGateway(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteGateway, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpGateway{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hasher: utils.NewHasher(appCfg.HashKey),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpGateway) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpGateway) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register posts the credentials to POST /api/auth/register. The bearer
// token is read from the Authorization response header and the user identity
// from its subject.
func (h *httpGateway) Register(ctx context.Context, user models.User) (models.Session, error) {
	return h.authenticate(ctx, pathRegister, user)
}

// Login posts the credentials to POST /api/auth/login.
func (h *httpGateway) Login(ctx context.Context, user models.User) (models.Session, error) {
	return h.authenticate(ctx, pathLogin, user)
}

func (h *httpGateway) authenticate(ctx context.Context, path string, user models.User) (models.Session, error) {
	body, err := json.Marshal(models.User{Login: user.Login, Password: user.Password})
	if err != nil {
		return models.Session{}, fmt.Errorf("encode credentials: %w", err)
	}

	resp, err := h.signed(h.client.R().SetContext(ctx), body).Post(path)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %s request: %w", ErrNetwork, path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("parse bearer token: %w", err)
	}
	userID, err := parseUserIDFromJWT(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("parse user id: %w", err)
	}

	h.SetToken(token)
	return models.Session{UserID: userID, Login: user.Login, Token: token}, nil
}

// Ping calls GET /api/ping.
func (h *httpGateway) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(pathPing)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

// PullAll calls GET /api/users/{userID}/data.
func (h *httpGateway) PullAll(ctx context.Context, userID string) (models.Snapshot, error) {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return nil, err
	}

	var pulled models.PullResponse
	resp, err := req.SetResult(&pulled).Get(pathUserData)
	if err != nil {
		return nil, fmt.Errorf("%w: pull request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	snapshot := make(models.Snapshot, len(models.Collections))
	for _, c := range models.Collections {
		records := pulled.Collections[c]
		if records == nil {
			records = []models.Record{}
		}
		for i := range records {
			records[i].Collection = c
		}
		snapshot[c] = records
	}
	return snapshot, nil
}

// Upsert calls PUT /api/users/{userID}/data/{collection}/{id} with the
// payload as body.
func (h *httpGateway) Upsert(ctx context.Context, userID string, record models.Record) error {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return err
	}

	payload := record.Payload
	if payload == nil {
		payload = models.Payload{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %w", ErrBadRequest, err)
	}

	resp, err := h.signed(req, body).
		SetPathParam("collection", record.Collection.String()).
		SetPathParam("id", record.ID).
		Put(pathUserRecord)
	if err != nil {
		return fmt.Errorf("%w: upsert request: %w", ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

// Delete calls DELETE /api/users/{userID}/data/{collection}/{id}.
func (h *httpGateway) Delete(ctx context.Context, userID string, c models.Collection, id string) error {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("collection", c.String()).
		SetPathParam("id", id).
		Delete(pathUserRecord)
	if err != nil {
		return fmt.Errorf("%w: delete request: %w", ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

// CommitBatch calls POST /api/users/{userID}/data/batch.
func (h *httpGateway) CommitBatch(ctx context.Context, userID string, changes []models.PendingChange) error {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(models.BatchRequest{Changes: changes, Length: len(changes)})
	if err != nil {
		return fmt.Errorf("%w: encode batch: %w", ErrBadRequest, err)
	}

	resp, err := h.signed(req, body).Post(pathUserBatch)
	if err != nil {
		return fmt.Errorf("%w: batch request: %w", ErrNetwork, err)
	}
	if err = mapBatchError(resp); err != nil {
		h.logger.Warn().Err(err).
			Str("func", "*httpGateway.CommitBatch").
			Int("changes", len(changes)).
			Msg("batch rejected by remote store")
		return err
	}
	return nil
}

func (h *httpGateway) authedRequest(ctx context.Context, userID string) (*resty.Request, error) {
	token := h.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user scope", ErrBadRequest)
	}
	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("userID", userID), nil
}

// signed attaches body as JSON and, when a key is configured, its HMAC.
func (h *httpGateway) signed(req *resty.Request, body []byte) *resty.Request {
	req.SetHeader("Content-Type", "application/json").SetBody(body)
	if h.hasher.Enabled() {
		req.SetHeader(utils.HashHeader, h.hasher.SumHex(body))
	}
	return req
}

func parseUserIDFromJWT(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
