package v1

import (
	"tugas-api/internal/api/v1/handlers"
	"tugas-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App) {
	// User
	app.Post("/users", handlers.Signup)
	app.Post("/users/login", handlers.Login)
	app.Post("/users/logout", middleware.UseToken, handlers.Logout)
	app.Post("/users/logoutall", middleware.UseToken, handlers.LogoutAll)
	app.Get("/users/me", middleware.UseToken, handlers.GetProfile)
	app.Patch("/users/me", middleware.UseToken, handlers.UpdateProfile)
	app.Delete("/users/me", middleware.UseToken, handlers.DeleteAccount)

	// Avatar
	app.Post("/users/me/avatar", middleware.UseToken, handlers.UploadAvatar)
	app.Delete("/users/me/avatar", middleware.UseToken, handlers.DeleteAvatar)
	// Avatar bisa dibaca publik berdasarkan id user
	app.Get("/users/:id/avatar", handlers.GetAvatar)

	// Task
	taskRoutes := app.Group("/tasks", middleware.UseToken)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Patch("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
}
