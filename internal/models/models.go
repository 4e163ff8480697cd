package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Populated by listing queries only.
	NoteCount int `json:"noteCount"`
}

// CategoryRef is the slim category shape embedded in note responses.
type CategoryRef struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type Note struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	CategoryID *int64    `json:"categoryId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"isPublic"`
	IsPinned   bool      `json:"isPinned"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Category *CategoryRef `json:"category,omitempty"`
	Author   string       `json:"author,omitempty"`
	Views    int64        `json:"views,omitempty"`
}
