package util

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyAdminPassword - ни ADMIN_PASSWORD, ни ADMIN_PASSWORD_HASH не заданы
var ErrEmptyAdminPassword = errors.New("admin password is empty")

// HashAdminPassword считает bcrypt хеш пароля администратора при старте,
// когда в конфиге задан открытый ADMIN_PASSWORD.
func HashAdminPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return string(hash), nil
}

// ValidateAdminPasswordHash проверяет ADMIN_PASSWORD_HASH из конфига.
// Битый хеш лучше отклонить при старте, иначе любой вход будет 401.
func ValidateAdminPasswordHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("invalid admin password hash: %w", err)
	}
	return nil
}

// CheckAdminPassword сравнивает пароль из запроса входа с хешем администратора
func CheckAdminPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
