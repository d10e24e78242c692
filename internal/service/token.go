package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"simpliparts-be/internal/entity"
	"simpliparts-be/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

func issueAccessToken(secret string, user *entity.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(accessTokenTTL)
	claims := serverutils.TokenClaims{
		UserID: user.Id.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
