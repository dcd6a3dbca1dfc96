package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/textproto"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// emailSender is the part of the SES client the service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends exported datasets to the researcher via Amazon SES
type EmailService struct {
	client    emailSender
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

func newEmailService(client emailSender, fromEmail, fromName string, debug bool) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendExport mails a CSV export as an attachment
func (s *EmailService) SendExport(ctx context.Context, toEmail, filename string, data []byte, summary string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): export %s to %s", filename, toEmail)
		return nil
	}
	if toEmail == "" {
		return fmt.Errorf("no recipient configured for export %s", filename)
	}

	subject := "Relational reasoning study data: " + filename
	raw, err := s.buildMessage(toEmail, subject, summary, filename, data)
	if err != nil {
		return err
	}

	if s.debug {
		log.Printf("[DEBUG] Sending export email: to=%s, attachment=%s (%d bytes)", toEmail, filename, len(data))
	}

	result, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{toEmail}},
		Content:     &types.EmailContent{Raw: &types.RawMessage{Data: raw}},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", aws.ToString(result.MessageId))
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

func (s *EmailService) fromAddress() string {
	if s.fromName != "" {
		return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", s.fromName), s.fromEmail)
	}
	return s.fromEmail
}

// buildMessage renders a multipart/mixed message with a text body and the
// CSV attachment
func (s *EmailService) buildMessage(toEmail, subject, body, filename string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.fromAddress())
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message body: %w", err)
	}
	fmt.Fprintf(text, "%s\r\n\r\nThe exported data is attached as %s.\r\n", body, filename)

	attachment, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("text/csv; charset=UTF-8; name=%q", filename)},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		attachment.Write([]byte(encoded[:76] + "\r\n"))
		encoded = encoded[76:]
	}
	attachment.Write([]byte(encoded + "\r\n"))

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}
