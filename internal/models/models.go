package models

import "time"

// User merepresentasikan satu baris pada tabel users.
// Password dan avatar tidak pernah diserialisasi ke response JSON.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Age       int       `json:"age"`
	Avatar    []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task merepresentasikan satu baris pada tabel tasks.
// Setiap task dimiliki oleh tepat satu user (kolom owner).
type Task struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
