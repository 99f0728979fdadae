package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	host      string // empty means the SendGrid default
}

// NewEmailService returns a SendGrid backed mailer. With no API key every
// send is skipped and logged.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	if s.apiKey == "" {
		logger.Debug("Email disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	if s.host != "" {
		client.BaseURL = s.host + sendEndpoint
	}

	logger.ExternalServiceCall("SendGrid", "Send", "to", to, "subject", subject)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", response.StatusCode)

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendRequestReceived(ctx context.Context, email, donorName string, req *domain.BloodRequest) error {
	subject := fmt.Sprintf("Blood request: %s needed in %s", req.BloodType, req.City)
	plainText := fmt.Sprintf(
		"Hello %s,\n\n%s needs %s blood in %s.\nUrgency: %s\nContact: %s\n\nPlease sign in to approve or decline the request.\n\nThank you,\nThe Blood Drive Team",
		donorName, req.RequesterName, req.BloodType, req.City, req.Urgency, req.ContactPhone)
	htmlContent := fmt.Sprintf(
		"<p>Hello %s,</p><p><strong>%s</strong> needs <strong>%s</strong> blood in %s.</p><p>Urgency: %s<br>Contact: %s</p><p>Please sign in to approve or decline the request.</p>",
		html.EscapeString(donorName), html.EscapeString(req.RequesterName), req.BloodType,
		html.EscapeString(req.City), req.Urgency, html.EscapeString(req.ContactPhone))
	return s.send(ctx, email, donorName, subject, plainText, htmlContent)
}

func (s *emailService) SendRequestDecision(ctx context.Context, email, requesterName string, req *domain.BloodRequest) error {
	subject := fmt.Sprintf("Your blood request was %s", req.Status)
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour request for %s blood in %s is now %s.\n\nThe Blood Drive Team",
		requesterName, req.BloodType, req.City, req.Status)
	htmlContent := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your request for <strong>%s</strong> blood in %s is now <strong>%s</strong>.</p>",
		html.EscapeString(requesterName), req.BloodType, html.EscapeString(req.City), req.Status)
	return s.send(ctx, email, requesterName, subject, plainText, htmlContent)
}

func (s *emailService) SendEligibilityReminder(ctx context.Context, email, donorName string, eligibleSince time.Time) error {
	day := eligibleSince.UTC().Format("2006-01-02")
	subject := "You can donate blood again"
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYou have been eligible to donate again since %s. Thank you for saving lives.\n\nThe Blood Drive Team",
		donorName, day)
	htmlContent := fmt.Sprintf(
		"<p>Hello %s,</p><p>You have been eligible to donate again since <strong>%s</strong>. Thank you for saving lives.</p>",
		html.EscapeString(donorName), day)
	return s.send(ctx, email, donorName, subject, plainText, htmlContent)
}
