package services

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client *resend.Client
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Email service will not be available.")
		return
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the singleton email service instance
func GetEmailService() *EmailService {
	return emailService
}

func fromAddress() string {
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "SpiritConnect <no-reply@spiritconnect.app>"
	}
	return from
}

// SendWelcomeEmail sends the post-registration welcome/verification email.
// Delivery is best-effort; registration never rolls back on failure.
func (s *EmailService) SendWelcomeEmail(toEmail string, fullName string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #7c6bb0;">Welcome to SpiritConnect</h2>
    <p>Hi %s,</p>
    <p>Thank you for joining our prayer community. You can now submit prayer
    requests and pray along with others.</p>
    <p>Blessings,<br>The SpiritConnect Team</p>
</body>
</html>`, fullName)

	params := &resend.SendEmailRequest{
		From:    fromAddress(),
		To:      []string{toEmail},
		Subject: "Welcome to SpiritConnect",
		Html:    htmlBody,
	}

	_, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %v", err)
	}

	log.Printf("Welcome email sent to %s", toEmail)
	return nil
}

// SendPasswordResetEmail sends a password reset email with a 6-digit code
func (s *EmailService) SendPasswordResetEmail(toEmail string, code string, fullName string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #7c6bb0;">Password Reset</h2>
    <p>Hi %s,</p>
    <p>We received a request to reset your password. Use this code:</p>
    <div style="background-color: #f5f5f5; border: 2px solid #7c6bb0; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0;">
        <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #7c6bb0; font-family: monospace;">%s</span>
    </div>
    <p>This code expires in 15 minutes. If you did not request a reset, you
    can ignore this email.</p>
    <p>Blessings,<br>The SpiritConnect Team</p>
</body>
</html>`, fullName, code)

	params := &resend.SendEmailRequest{
		From:    fromAddress(),
		To:      []string{toEmail},
		Subject: "Your SpiritConnect password reset code",
		Html:    htmlBody,
	}

	_, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	log.Printf("Password reset email sent to %s", toEmail)
	return nil
}
