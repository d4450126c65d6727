package models

import "errors"

// Ошибки аутентификации
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

// Ошибки задач
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUnauthorized = errors.New("task belongs to another user")
	ErrInvalidTask  = errors.New("invalid task")
)
