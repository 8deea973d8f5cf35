package handlers

import (
	"io"

	"tugas-api/internal/avatar"
	"tugas-api/internal/config"
	"tugas-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Avatar handlers

// UploadAvatar menerima satu file "avatar" dari form-data, memvalidasi
// ukuran dan ekstensi sebelum diproses, lalu menyimpan hasil normalisasi
// (250x250 PNG) pada record user, menggantikan avatar sebelumnya.
//
// POST /users/me/avatar
func UploadAvatar(c *fiber.Ctx) error {
	user := currentUser(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.ErrorLogger.Error("Error reading avatar upload", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Please upload an avatar file"})
	}

	// Validasi ukuran dan ekstensi dilakukan SEBELUM decoding
	if file.Size > avatar.MaxFileSize {
		logger.AuditLogger.Warn("Avatar too large", zap.Int64("size", file.Size))
		return c.Status(400).JSON(fiber.Map{"error": "File size exceeds the limit of 1MB"})
	}
	if !avatar.AllowedExt(file.Filename) {
		logger.AuditLogger.Warn("Avatar extension not allowed", zap.String("filename", file.Filename))
		return c.Status(400).JSON(fiber.Map{"error": "Please upload a jpg, jpeg or a png file"})
	}

	src, err := file.Open()
	if err != nil {
		logger.ErrorLogger.Error("Error opening avatar upload", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error processing avatar"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logger.ErrorLogger.Error("Error reading avatar upload", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error processing avatar"})
	}

	buf, err := avatar.Normalize(data)
	if err != nil {
		logger.AuditLogger.Warn("Avatar not decodable", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "File is not a valid image"})
	}

	if _, err := config.DB.Exec("UPDATE users SET avatar = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", buf, user.ID); err != nil {
		logger.ErrorLogger.Error("Error storing avatar", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error storing avatar"})
	}

	logger.AuditLogger.Info("Avatar uploaded", zap.String("user_id", user.ID))
	return c.SendStatus(200)
}

// DeleteAvatar mengosongkan avatar milik user yang sedang login.
//
// DELETE /users/me/avatar
func DeleteAvatar(c *fiber.Ctx) error {
	user := currentUser(c)

	if _, err := config.DB.Exec("UPDATE users SET avatar = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = $1", user.ID); err != nil {
		logger.ErrorLogger.Error("Error clearing avatar", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Error clearing avatar"})
	}

	logger.AuditLogger.Info("Avatar removed", zap.String("user_id", user.ID))
	return c.SendStatus(200)
}

// GetAvatar mengambil avatar user mana pun berdasarkan id, tanpa
// autentikasi. User yang tidak ada dan user tanpa avatar sama-sama 404.
//
// GET /users/:id/avatar
func GetAvatar(c *fiber.Ctx) error {
	userID := c.Params("id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not found"})
	}

	var buf []byte
	err := config.DB.QueryRow("SELECT avatar FROM users WHERE id = $1", userID).Scan(&buf)
	if err != nil || len(buf) == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Not found"})
	}

	c.Set("Content-Type", "image/png")
	return c.Send(buf)
}
