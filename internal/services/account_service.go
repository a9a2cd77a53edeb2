package services

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/mq"
)

// AccountService covers the account-facing operations outside the OTP flow:
// emergency contact updates and device position forwarding.
type AccountService struct {
	directory Directory
	publisher Publisher
	topics    *mq.TopicManager
	logger    zerolog.Logger
}

func NewAccountService(directory Directory, publisher Publisher, topics *mq.TopicManager, logger zerolog.Logger) *AccountService {
	return &AccountService{
		directory: directory,
		publisher: publisher,
		topics:    topics,
		logger:    logger,
	}
}

func (s *AccountService) UpdateEmergencyEmail(ctx context.Context, email, emergencyEmail string) error {
	if err := s.directory.UpdateEmergencyEmail(ctx, email, emergencyEmail); err != nil {
		return fmt.Errorf("failed to update emergency contact for %s: %w", email, err)
	}

	announcement := models.ContactAnnouncement{
		UserEmail:      email,
		EmergencyEmail: emergencyEmail,
	}
	if err := s.publisher.PublishRetainedJson(s.topics.GetEmailsTopic(), announcement); err != nil {
		s.logger.Error().Err(err).
			Str("email", email).
			Msg("Failed to publish contact announcement")
	}

	s.logger.Info().
		Str("email", email).
		Msg("Emergency contact updated")

	return nil
}

// ForwardPosition publishes a device-reported position onto the gps topic,
// where the relay picks it up like any bus message.
func (s *AccountService) ForwardPosition(ctx context.Context, position models.Position) error {
	if err := s.publisher.Publish(s.topics.GetGpsTopic(), position.Encode()); err != nil {
		return fmt.Errorf("failed to forward position: %w", err)
	}
	return nil
}
