package session

import (
	"fmt"

	"tugas-api/internal/config"
)

// Session store memakai Redis set per user: sessions:<user_id>.
// Set ini adalah daftar token yang masih berlaku, sekaligus
// revocation list untuk logout / logout-all.

func key(userID string) string {
	return fmt.Sprintf("sessions:%s", userID)
}

// Add mendaftarkan token baru sebagai session aktif milik user.
func Add(userID, token string) error {
	return config.RedisClient.SAdd(config.Ctx, key(userID), token).Err()
}

// Contains memeriksa apakah token masih terdaftar sebagai session aktif.
func Contains(userID, token string) (bool, error) {
	return config.RedisClient.SIsMember(config.Ctx, key(userID), token).Result()
}

// Remove mencabut tepat satu token (logout).
func Remove(userID, token string) error {
	return config.RedisClient.SRem(config.Ctx, key(userID), token).Err()
}

// RemoveAll mencabut seluruh token milik user (logout-all).
func RemoveAll(userID string) error {
	return config.RedisClient.Del(config.Ctx, key(userID)).Err()
}
