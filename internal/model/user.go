package model

import "time"

type User struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Verified     bool   `json:"isVerified" gorm:"default:false"`
}

// UserPatch is a partial update of a user record. Nil fields are left
// untouched by the merge.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Verified     *bool
}

// VerificationCode is a short-lived one-time code proving that whoever
// registered a user controls its email address. At most one live code
// exists per user; a resend overwrites the previous one.
type VerificationCode struct {
	UserID    string
	Code      string
	ExpiresAt time.Time
}
