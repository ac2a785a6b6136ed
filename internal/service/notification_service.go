package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
	"github.com/fleetpass/fleet-compliance-api/pkg/jobs"
)

// EmailSender delivers a single message. Implementations wrap whatever
// transport the deployment uses.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type notificationQueue interface {
	Enqueue(job jobs.Job) error
}

type notificationRecipientReader interface {
	EmailForDriver(ctx context.Context, driverID string) (string, error)
	EmailForVehicleOwner(ctx context.Context, vehicleID string) (string, error)
}

// notificationPayload is carried through the job queue.
type notificationPayload struct {
	SubjectID string
	Table     models.CredentialTable
	Subject   string
	Body      string
}

// NotificationService fans review outcomes out to drivers by email. Sends
// run through the background queue; a delivery failure never blocks or
// fails the review that triggered it.
type NotificationService struct {
	queue      notificationQueue
	recipients notificationRecipientReader
	sender     EmailSender
	logger     *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(queue notificationQueue, recipients notificationRecipientReader, sender EmailSender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, recipients: recipients, sender: sender, logger: logger}
}

// CredentialApproved queues an approval notice.
func (s *NotificationService) CredentialApproved(table models.CredentialTable, cred *models.Credential, typeName string) {
	body := fmt.Sprintf("Your %s has been approved.", typeName)
	if cred.ExpiresAt != nil {
		body = fmt.Sprintf("Your %s has been approved and is valid until %s.", typeName, cred.ExpiresAt.Format("January 2, 2006"))
	}
	s.enqueue(table, cred, fmt.Sprintf("%s approved", typeName), body)
}

// CredentialRejected queues a rejection notice with the reason.
func (s *NotificationService) CredentialRejected(table models.CredentialTable, cred *models.Credential, typeName, reason string) {
	body := fmt.Sprintf("Your %s was not approved: %s. Please review and resubmit.", typeName, reason)
	s.enqueue(table, cred, fmt.Sprintf("%s needs attention", typeName), body)
}

func (s *NotificationService) enqueue(table models.CredentialTable, cred *models.Credential, subject, body string) {
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "credential_notification",
		Payload: notificationPayload{
			SubjectID: cred.SubjectID,
			Table:     table,
			Subject:   subject,
			Body:      body,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("credentialId", cred.ID), zap.Error(err))
	}
}

// Handle is the queue worker entrypoint: resolve the recipient and send.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notificationPayload)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("jobId", job.ID))
		return nil
	}

	var email string
	var err error
	switch payload.Table {
	case models.TableVehicleCredentials:
		email, err = s.recipients.EmailForVehicleOwner(ctx, payload.SubjectID)
	default:
		email, err = s.recipients.EmailForDriver(ctx, payload.SubjectID)
	}
	if err != nil {
		return fmt.Errorf("resolve notification recipient: %w", err)
	}
	if email == "" {
		s.logger.Debug("notification skipped, no recipient", zap.String("subjectId", payload.SubjectID))
		return nil
	}

	if err := s.sender.Send(ctx, email, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}
