package repositories

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"time"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/services"
)

// AccountRepository is the directory backing the relay and the OTP flow.
// Identifier uniqueness is enforced by the unique index on email; concurrent
// code upserts for the same email resolve last-writer-wins.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpsertCode stores a fresh pending code for the email, creating the account
// if it does not exist yet. Any previously issued code is overwritten.
func (r *AccountRepository) UpsertCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Account
		result := tx.Where("email = ?", email).First(&existing)

		if result.Error == nil {
			return tx.Model(&models.Account{}).
				Where("email = ?", email).
				Updates(map[string]interface{}{
					"otp_code":       code,
					"otp_expires_at": expiresAt,
				}).Error

		} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			account := models.Account{
				Email:        email,
				OtpCode:      code,
				OtpExpiresAt: &expiresAt,
			}
			return tx.Create(&account).Error

		} else {
			return result.Error
		}
	})
}

// CompleteRegistration sets the credential hash and emergency contact and
// clears the pending code so it cannot be replayed.
func (r *AccountRepository) CompleteRegistration(ctx context.Context, email, passwordHash, emergencyEmail string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"password_hash":   passwordHash,
			"emergency_email": emergencyEmail,
			"otp_code":        "",
			"otp_expires_at":  nil,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateEmergencyEmail(ctx context.Context, email, emergencyEmail string) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Update("emergency_email", emergencyEmail)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrAccountNotFound
	}
	return nil
}
