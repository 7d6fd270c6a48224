package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores dashboard users with role-based access.
// Rol: "restaurante" | "admin"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nome         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// RestauranteID scopes a restaurant user to its tenant; nil for admins.
	RestauranteID *uuid.UUID `gorm:"type:uuid"`
	Ativo         bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
