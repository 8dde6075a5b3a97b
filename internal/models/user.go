package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// DefaultProfilePicture is assigned to accounts that never uploaded an avatar.
const DefaultProfilePicture = "https://upload.wikimedia.org/wikipedia/commons/7/7c/Profile_avatar_placeholder_large.png"

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FirstName      string    `json:"firstname" gorm:"size:100;not null"`
	LastName       string    `json:"lastname" gorm:"size:100;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-"` // bcrypt hash
	BirthdayDay    int       `json:"birthday_day,omitempty"`
	BirthdayMonth  int       `json:"birthday_month,omitempty"`
	BirthdayYear   int       `json:"birthday_year,omitempty"`
	Sex            string    `json:"sex,omitempty" gorm:"size:20"`
	Bio            string    `json:"bio" gorm:"size:150"`
	ProfilePicture string    `json:"profilePicture"`
	CoverPhoto     string    `json:"coverPhoto"`
	FirebaseUID    *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BeforeSave keeps emails comparable and fills the avatar default.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.ProfilePicture == "" {
		u.ProfilePicture = DefaultProfilePicture
	}
	return nil
}

// UserCompact is the public projection embedded in friendship, post and notification payloads.
type UserCompact struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"firstname"`
	LastName       string `json:"lastname"`
	ProfilePicture string `json:"profilePicture"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}

type SignupRequest struct {
	FirstName     string `json:"firstname" validate:"required,min=1,max=100"`
	LastName      string `json:"lastname" validate:"required,min=1,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	BirthdayDay   int    `json:"birthday_day" validate:"omitempty,min=1,max=31"`
	BirthdayMonth int    `json:"birthday_month" validate:"omitempty,min=1,max=12"`
	BirthdayYear  int    `json:"birthday_year" validate:"omitempty,min=1900,max=2100"`
	Sex           string `json:"sex" validate:"omitempty,max=20"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName      string  `json:"firstname,omitempty" validate:"omitempty,min=1,max=100"`
	LastName       string  `json:"lastname,omitempty" validate:"omitempty,min=1,max=100"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=150"`
	ProfilePicture string  `json:"profilePicture,omitempty" validate:"omitempty,max=2048"`
	CoverPhoto     string  `json:"coverPhoto,omitempty" validate:"omitempty,max=2048"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
