package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model           `json:"-"`
	ID                   uint       `json:"id" gorm:"primaryKey"`
	Name                 string     `json:"name"`
	Email                string     `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password             string     `json:"-"`                        // Store hashed password, ignore for JSON serialization
	GoogleID             string     `json:"google_id,omitempty" gorm:"index"` // Linked Google account UID after federated login
	SchoolCollege        string     `json:"school_college"`
	InterestedTopic      string     `json:"interested_topic"`
	ResetPasswordOtp     int        `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
}

// UserCompact is the trimmed user shape embedded in enriched responses
type UserCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ToCompact returns the compact representation of a user
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name}
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	SchoolCollege   string `json:"school_college,omitempty"`
	InterestedTopic string `json:"interested_topic,omitempty"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Otp         int    `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
