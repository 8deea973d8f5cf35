package middleware

import (
	"strings"

	"tugas-api/internal/config"
	"tugas-api/internal/models"
	"tugas-api/internal/session"
	"tugas-api/internal/token"
	"tugas-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// unauthorized mengembalikan respons 401 tanpa detail internal.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Please authenticate",
	})
}

// UseToken adalah auth gate untuk seluruh route yang dilindungi:
// 1. ambil token dari header Authorization (format "Bearer <token>")
// 2. verifikasi signature JWT
// 3. pastikan token masih terdaftar di session store (revocation check,
//    inilah yang membuat logout benar-benar mencabut token)
// 4. muat user dan simpan di locals untuk handler berikutnya
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.SecurityLogger.Warn("No token provided", zap.String("url", c.OriginalURL()))
		return unauthorized(c)
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.SecurityLogger.Warn("Invalid token format", zap.String("url", c.OriginalURL()))
		return unauthorized(c)
	}
	raw := parts[1]

	userID, err := token.Verify(raw)
	if err != nil {
		logger.SecurityLogger.Warn("Invalid token signature", zap.Error(err))
		return unauthorized(c)
	}

	// Signature valid saja tidak cukup, token harus masih aktif.
	active, err := session.Contains(userID, raw)
	if err != nil || !active {
		logger.SecurityLogger.Warn("Revoked or unknown token", zap.String("user_id", userID))
		return unauthorized(c)
	}

	var user models.User
	err = config.DB.QueryRow(
		"SELECT id, name, email, password, age, created_at, updated_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Age, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.SecurityLogger.Warn("Token for unknown user", zap.String("user_id", userID))
		return unauthorized(c)
	}

	c.Locals("user", user)
	c.Locals("token", raw)
	return c.Next()
}
