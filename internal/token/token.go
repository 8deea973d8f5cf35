package token

import (
	"errors"
	"fmt"
	"time"

	"tugas-api/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// Issue membuat JWT (HS256) yang berisi user_id dan waktu penerbitan.
// Token sengaja tidak memiliki exp: masa berlaku token dikontrol
// sepenuhnya oleh keanggotaan pada session store, bukan oleh claim.
func Issue(userID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
	})
	return t.SignedString(config.SecretKey)
}

// Verify memvalidasi signature token dan mengembalikan user_id di dalamnya.
func Verify(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return config.SecretKey, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
