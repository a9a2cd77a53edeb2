package models

import (
	"time"
)

// Account is a registered or pending user record keyed by email.
// An account is created on first OTP issuance with only a pending code;
// the password hash and emergency contact are set on successful registration.
type Account struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `json:"-"`
	EmergencyEmail string     `json:"emergency_email"`
	OtpCode        string     `json:"-"`
	OtpExpiresAt   *time.Time `json:"-"`
}

func (a *Account) IsRegistered() bool {
	return a.PasswordHash != ""
}

func (a *Account) HasPendingCode() bool {
	return a.OtpCode != "" && a.OtpExpiresAt != nil
}

// AlertRecipient is the address weather alerts go to: the emergency
// contact when one is set, otherwise the account's own address.
func (a *Account) AlertRecipient() string {
	if a.EmergencyEmail != "" {
		return a.EmergencyEmail
	}
	return a.Email
}

func (a *Account) ToDto() AccountDto {
	return AccountDto{
		Email:          a.Email,
		EmergencyEmail: a.EmergencyEmail,
	}
}

// AccountDto carries the public fields only, never the credential.
type AccountDto struct {
	Email          string `json:"email"`
	EmergencyEmail string `json:"emergency_email"`
}
