package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User account statuses used by the analytics breakdowns.
const (
	UserStatusActive = "active"
	UserStatusNew    = "new"
	UserStatusBanned = "banned"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"` // hashed, never serialized
	Role        string `json:"role" gorm:"size:20;default:user"`
	Status      string `json:"status" gorm:"size:20;index;default:new"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // set for accounts created via Firebase sign-in
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
