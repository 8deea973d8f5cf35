package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tugas-api/internal/config"
	"tugas-api/internal/models"
	"tugas-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task handlers

// ownedFilter adalah predikat kepemilikan yang dipakai SEMUA operasi
// per-task: task milik user lain harus tampak tidak ada (404), bukan 403,
// supaya keberadaan task tidak bisa di-enumerasi.
const ownedFilter = " WHERE id = $1 AND owner = $2"

// taskColumns adalah daftar kolom yang di-select untuk models.Task.
const taskColumns = "id, owner, description, completed, created_at, updated_at"

// sortColumns memetakan nama field pada query string ke kolom database.
// Hanya kolom dalam daftar ini yang boleh masuk ke klausa ORDER BY.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"completed":   "completed",
	"description": "description",
}

// parseSort menerjemahkan "field:asc|desc" menjadi kolom + arah sort.
// Default created_at ascending; arah selain "desc" dianggap ascending;
// field yang tidak dikenal diabaikan.
func parseSort(sortBy string) (column, direction string) {
	column, direction = "created_at", "ASC"
	if sortBy == "" {
		return
	}
	parts := strings.SplitN(sortBy, ":", 2)
	if col, ok := sortColumns[parts[0]]; ok {
		column = col
	}
	if len(parts) == 2 && parts[1] == "desc" {
		direction = "DESC"
	}
	return
}

func scanTask(row *sql.Row, task *models.Task) error {
	return row.Scan(&task.ID, &task.Owner, &task.Description, &task.Completed,
		&task.CreatedAt, &task.UpdatedAt)
}

// CreateTask membuat task baru milik user yang sedang login.
// Field owner apa pun yang dikirim client diabaikan.
//
// POST /tasks
func CreateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	type TaskRequest struct {
		Description string `json:"description" validate:"required"`
		Completed   bool   `json:"completed"`
	}

	// variabel req digunakan untuk menerima inputan dari user
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}
	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Owner:       user.ID,
		Description: req.Description,
		Completed:   req.Completed,
	}

	err := config.DB.QueryRow(
		"INSERT INTO tasks (id, owner, description, completed) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at",
		task.ID, task.Owner, task.Description, task.Completed,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error creating task"})
	}

	logger.AuditLogger.Info("Task created", zap.String("task_id", task.ID), zap.String("user_id", user.ID))
	return c.Status(201).JSON(task)
}

// ListTasks mengembalikan task milik caller, dengan dukungan:
//
//	GET /tasks?completed=true
//	GET /tasks?limit=10&skip=20
//	GET /tasks?sortBy=createdAt:desc
//
// limit/skip yang tidak valid diabaikan (tanpa batas / mulai dari awal).
func ListTasks(c *fiber.Ctx) error {
	user := currentUser(c)

	query := "SELECT " + taskColumns + " FROM tasks WHERE owner = $1"
	args := []interface{}{user.ID}

	// Filter equality pada completed, hanya jika parameternya dikirim.
	// Nilai selain "true" dianggap false.
	if v := c.Query("completed"); v != "" {
		query += fmt.Sprintf(" AND completed = $%d", len(args)+1)
		args = append(args, v == "true")
	}

	column, direction := parseSort(c.Query("sortBy"))
	query += " ORDER BY " + column + " " + direction

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil && skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, skip)
	}

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching tasks"})
	}
	defer rows.Close()

	// Hasil kosong adalah list kosong, bukan error
	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(&task.ID, &task.Owner, &task.Description, &task.Completed,
			&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "Error fetching tasks"})
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching tasks"})
	}

	return c.JSON(tasks)
}

// GetTask mengambil satu task milik caller. Task yang tidak ada dan task
// milik user lain menghasilkan 404 yang sama.
//
// GET /tasks/:id
func GetTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID := c.Params("id")
	if _, err := uuid.Parse(taskID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
	}

	var task models.Task
	row := config.DB.QueryRow("SELECT "+taskColumns+" FROM tasks"+ownedFilter, taskID, user.ID)
	if err := scanTask(row, &task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching task"})
	}

	return c.JSON(task)
}

// UpdateTask mengubah sebagian field task. Hanya description dan completed
// yang boleh diubah; field lain apa pun membuat seluruh request ditolak
// dengan 400 sebelum menyentuh database.
//
// PATCH /tasks/:id
func UpdateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID := c.Params("id")
	if _, err := uuid.Parse(taskID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{"error": "Bad request"})
	}

	// Tolak seluruh request jika ada field yang tidak dikenal
	allowed := map[string]bool{"description": true, "completed": true}
	for field := range body {
		if !allowed[field] {
			logger.AuditLogger.Warn("Invalid update field", zap.String("field", field))
			return c.Status(400).JSON(fiber.Map{"error": "Invalid update(s)!"})
		}
	}

	var task models.Task
	row := config.DB.QueryRow("SELECT "+taskColumns+" FROM tasks"+ownedFilter, taskID, user.ID)
	if err := scanTask(row, &task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error fetching task"})
	}

	if v, ok := body["description"]; ok {
		description, ok := v.(string)
		if !ok || description == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		task.Description = description
	}
	if v, ok := body["completed"]; ok {
		completed, ok := v.(bool)
		if !ok {
			return c.Status(400).JSON(fiber.Map{"error": "Validation error"})
		}
		task.Completed = completed
	}

	err := config.DB.QueryRow(
		"UPDATE tasks SET description = $3, completed = $4, updated_at = CURRENT_TIMESTAMP"+ownedFilter+" RETURNING updated_at",
		taskID, user.ID, task.Description, task.Completed,
	).Scan(&task.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error updating task"})
	}

	logger.AuditLogger.Info("Task updated", zap.String("task_id", task.ID))
	return c.JSON(task)
}

// DeleteTask menghapus task milik caller dan mengembalikan record
// yang dihapus.
//
// DELETE /tasks/:id
func DeleteTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID := c.Params("id")
	if _, err := uuid.Parse(taskID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
	}

	var task models.Task
	row := config.DB.QueryRow("DELETE FROM tasks"+ownedFilter+" RETURNING "+taskColumns, taskID, user.ID)
	if err := scanTask(row, &task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Task not found"})
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Error deleting task"})
	}

	logger.AuditLogger.Info("Task deleted", zap.String("task_id", task.ID))
	return c.JSON(task)
}
