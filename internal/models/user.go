// Package models содержит доменные структуры сервиса задач: пользователя,
// задачу с подзадачами, черновики из JSON-запросов и события аудита.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное, регистр учитывается)
	PasswordHash string    // Хэш пароля пользователя
	CreatedAt    time.Time // Дата регистрации
}
