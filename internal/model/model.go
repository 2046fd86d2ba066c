package model

import "time"

// Contact is one submission of the contact form as it is stored in the database.
// Id and CreatedAt are assigned by the database on insert.
type Contact struct {
	Id        int64     `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
