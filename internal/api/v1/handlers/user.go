package handlers

import (
	"encoding/json"
	"strings"

	"tugas-api/internal/config"
	"tugas-api/internal/mailer"
	"tugas-api/internal/models"
	"tugas-api/internal/session"
	"tugas-api/internal/token"
	"tugas-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// currentUser mengambil user hasil auth gate dari locals.
func currentUser(c *fiber.Ctx) models.User {
	return c.Locals("user").(models.User)
}

// validPassword menolak password yang mengandung kata "password"
// (aturan tambahan di luar panjang minimum).
func validPassword(password string) bool {
	return !strings.Contains(strings.ToLower(password), "password")
}

// User handlers

// Signup mendaftarkan user baru: hash password, simpan user,
// terbitkan token session, lalu kirim email sambutan (best-effort).
//
// POST /users
func Signup(c *fiber.Ctx) error {
	type SignupRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=7"`
		Age      int    `json:"age" validate:"gte=0"`
	}

	// variabel req digunakan untuk menerima inputan dari user
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in signup", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}

	// Validasi dengan validator
	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during signup", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
	}
	if !validPassword(req.Password) {
		return c.Status(400).JSON(fiber.Map{"error": "Password cannot contain \"password\""})
	}

	// Email disimpan dalam bentuk lowercase agar unik secara konsisten
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Hash the password using bcrypt with default cost
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error creating user"})
	}

	user := models.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: email,
		Age:   req.Age,
	}

	// Insert data user ke dalam database.
	// Jika email sudah ada (unique violation), kembalikan 400.
	err = config.DB.QueryRow(
		"INSERT INTO users (id, name, email, password, age) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at",
		user.ID, user.Name, user.Email, string(hashedPassword), user.Age,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate email on signup", zap.String("email", email))
			return c.Status(400).JSON(fiber.Map{"error": "Email already in use"})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error creating user"})
	}

	// Terbitkan token dan daftarkan ke session store
	// sebelum dikembalikan ke client.
	tok, err := token.Issue(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error generating token"})
	}
	if err := session.Add(user.ID, tok); err != nil {
		logger.ErrorLogger.Error("Error storing session", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error generating token"})
	}

	// Email sambutan: fire-and-forget, tidak pernah menggagalkan signup
	mailer.SendWelcome(user.Email, user.Name)

	logger.AuditLogger.Info("User registered successfully", zap.String("user_id", user.ID))
	return c.Status(201).JSON(fiber.Map{
		"user":  user,
		"token": tok,
	})
}

// Login memeriksa kredensial dan menerbitkan token baru.
// Token lama tetap berlaku (mendukung beberapa device sekaligus).
//
// POST /users/login
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}
	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, name, email, password, age, created_at, updated_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Age, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// Email tidak dikenal dan password salah tidak boleh
		// bisa dibedakan dari response.
		logger.SecurityLogger.Warn("Login failed: user not found", zap.String("email", email))
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	// bcrypt melakukan perbandingan constant-time terhadap hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Login failed: wrong password", zap.String("email", email))
		return c.Status(400).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	tok, err := token.Issue(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error generating token"})
	}
	if err := session.Add(user.ID, tok); err != nil {
		logger.ErrorLogger.Error("Error storing session", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error generating token"})
	}

	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID))
	return c.JSON(fiber.Map{
		"user":  user,
		"token": tok,
	})
}

// Logout mencabut tepat satu token: token yang dipakai pada request ini.
// Session lain milik user yang sama tetap berlaku.
//
// POST /users/logout
func Logout(c *fiber.Ctx) error {
	user := currentUser(c)
	tok := c.Locals("token").(string)

	if err := session.Remove(user.ID, tok); err != nil {
		logger.ErrorLogger.Error("Error removing session", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error logging out"})
	}

	logger.AuditLogger.Info("Logout", zap.String("user_id", user.ID))
	return c.SendStatus(200)
}

// LogoutAll mencabut seluruh session milik user.
//
// POST /users/logoutall
func LogoutAll(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := session.RemoveAll(user.ID); err != nil {
		logger.ErrorLogger.Error("Error removing sessions", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error logging out"})
	}

	logger.AuditLogger.Info("Logout all", zap.String("user_id", user.ID))
	return c.SendStatus(200)
}

// GetProfile mengembalikan profil milik user yang sedang login.
//
// GET /users/me
func GetProfile(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// UpdateProfile mengubah sebagian field profil. Hanya name, email,
// password, dan age yang boleh diubah; field lain apa pun di body
// membuat seluruh request ditolak dengan 400 tanpa perubahan apa pun.
//
// PATCH /users/me
func UpdateProfile(c *fiber.Ctx) error {
	user := currentUser(c)

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		logger.ErrorLogger.Error("Bad request in update profile", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}

	// Tolak seluruh request jika ada field yang tidak dikenal
	allowed := map[string]bool{"name": true, "email": true, "password": true, "age": true}
	for field := range body {
		if !allowed[field] {
			logger.AuditLogger.Warn("Invalid update field", zap.String("field", field))
			return c.Status(400).JSON(fiber.Map{"error": "Invalid update(s)!"})
		}
	}

	hashed := user.Password
	if v, ok := body["name"]; ok {
		name, ok := v.(string)
		if !ok || name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		user.Name = name
	}
	if v, ok := body["email"]; ok {
		email, ok := v.(string)
		if !ok {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		email = strings.ToLower(strings.TrimSpace(email))
		if err := config.Validate.Var(email, "required,email"); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		user.Email = email
	}
	if v, ok := body["password"]; ok {
		password, ok := v.(string)
		if !ok || len(password) < 7 || !validPassword(password) {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		// Password baru di-hash ulang sebelum disimpan
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "Error updating user"})
		}
		hashed = string(h)
	}
	if v, ok := body["age"]; ok {
		// JSON number selalu ter-decode sebagai float64
		f, ok := v.(float64)
		if !ok || f < 0 || f != float64(int(f)) {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		user.Age = int(f)
	}

	err := config.DB.QueryRow(
		`UPDATE users
		 SET name = $1, email = $2, password = $3, age = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING updated_at`,
		user.Name, user.Email, hashed, user.Age, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return c.Status(400).JSON(fiber.Map{"error": "Email already in use"})
		}
		logger.ErrorLogger.Error("Error updating user", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Error updating user"})
	}

	logger.AuditLogger.Info("Profile updated", zap.String("user_id", user.ID))
	return c.JSON(user)
}

// DeleteAccount menghapus akun beserta seluruh task miliknya.
// Urutan cascade: tasks dulu, lalu user, lalu session; tidak memakai
// transaksi multi-statement, crash di tengah tidak meninggalkan task
// tanpa owner.
//
// DELETE /users/me
func DeleteAccount(c *fiber.Ctx) error {
	user := currentUser(c)

	// Email perpisahan: best-effort, tidak menunda penghapusan
	mailer.SendFarewell(user.Email, user.Name)

	if _, err := config.DB.Exec("DELETE FROM tasks WHERE owner = $1", user.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting tasks for user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error deleting account"})
	}
	if _, err := config.DB.Exec("DELETE FROM users WHERE id = $1", user.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error deleting account"})
	}
	if err := session.RemoveAll(user.ID); err != nil {
		logger.ErrorLogger.Error("Error removing sessions", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error deleting account"})
	}

	logger.AuditLogger.Info("Account deleted", zap.String("user_id", user.ID))
	return c.JSON(user)
}
