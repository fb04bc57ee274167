package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/kharcha-sync/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWTToken creates a signed HMAC-SHA256 JWT token whose subject is the
// user identity scoping the remote collections.
//
// The token carries the iss, sub, iat and exp claims. All parameters are
// required; an error is returned if any of them is empty or zero.
//
//	token, err := utils.GenerateJWTToken("kharcha", "0190c7e2-...", time.Hour, "secret")
func GenerateJWTToken(issuer, userID string, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || userID == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return models.Token{Token: token, SignedString: tokenString, UserID: userID}, nil
}

// ValidateAndParseJWTToken verifies the signature, issuer and expiry of
// tokenString and returns the token with UserID filled from the subject.
// Only HMAC signing methods are accepted.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	parsed := &models.Token{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	userID, err := parsed.GetUserID()
	if err != nil {
		return models.Token{}, err
	}

	return models.Token{Token: token, SignedString: tokenString, UserID: userID}, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
