package database

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// SeedAdmin makes sure an admin account exists for the given credentials.
// An existing user with that email is promoted; its password is left untouched.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var user models.User
	err := conn.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.Role == models.RoleAdmin {
			return nil
		}
		log.Printf("[Seed] promoting %s to admin", email)
		return conn.Model(&user).Update("role", models.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	log.Printf("[Seed] creating admin account %s", email)
	return conn.Create(&models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}).Error
}
