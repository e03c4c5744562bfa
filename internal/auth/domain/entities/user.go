// Package entities содержит сущности домена аутентификации.
package entities

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Определяем ошибки домена пользователя.
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrPasswordTooShort = errors.New("password must contain at least 6 characters")
	ErrUserNotFound     = errors.New("user not found")
	ErrUnknownRole      = errors.New("unknown role")
)

// MinPasswordLength - минимальная длина пароля.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Role определяет набор прав пользователя.
type Role int

// Роли платформы.
const (
	RoleConsumer Role = iota
	RoleCreator
)

// String возвращает имя роли, которое попадает в claim role.
func (r Role) String() string {
	switch r {
	case RoleConsumer:
		return "Consumer"
	case RoleCreator:
		return "Creator"
	default:
		return "Unknown"
	}
}

// ParseRole разбирает имя роли без учета регистра.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "consumer":
		return RoleConsumer, nil
	case "creator":
		return RoleCreator, nil
	default:
		return 0, ErrUnknownRole
	}
}

// User представляет основную сущность домена пользователя.
// RefreshTokenHash хранит только SHA-256 хэш, пустая строка означает отсутствие токена.
type User struct {
	ID                 string
	Email              string
	Username           string
	FirstName          string
	LastName           string
	PasswordHash       string
	Role               Role
	RefreshTokenHash   string
	RefreshTokenExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Profile возвращает проекцию пользователя без секретов.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
	}
}

// Profile - публичные данные пользователя.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// NormalizeEmail приводит email к виду, в котором он сравнивается.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

// ValidatePassword проверяет длину пароля в символах.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
