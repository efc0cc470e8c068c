package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendStatusUpdate(toEmail, requestID, orderNumber, status string) error
	SendRequestReceived(toEmail, requestID, orderNumber string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	portalURL   string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get portal URL from ENV or default to a safe placeholder
	portalURL := os.Getenv("PORTAL_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		portalURL:   portalURL,
	}
}

var statusHeadlines = map[string]string{
	"pending":    "We have received your request",
	"scheduled":  "Your pickup has been scheduled",
	"picked_up":  "Your package has been picked up",
	"in_transit": "Your package is on its way back to us",
	"delivered":  "Your package has reached our warehouse",
	"approved":   "Your request has been approved",
	"rejected":   "Your request could not be approved",
}

func (s *emailService) SendStatusUpdate(toEmail, requestID, orderNumber, status string) error {
	headline, ok := statusHeadlines[status]
	if !ok {
		headline = "Your request has been updated"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Update on your request %s", requestID))

	trackLink := fmt.Sprintf("%s/requests/%s", s.portalURL, requestID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>Request <b>%s</b> for order <b>%s</b> is now <b>%s</b>.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Track your request</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, headline, requestID, orderNumber, status, trackLink, trackLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send status update to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Status update (%s) sent to %s\n", status, toEmail)
	return nil
}

func (s *emailService) SendRequestReceived(toEmail, requestID, orderNumber string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "We have received your request")

	trackLink := fmt.Sprintf("%s/requests/%s", s.portalURL, requestID)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Request received</h2>
			<p>Your request <b>%s</b> for order <b>%s</b> has been registered.</p>
			<p>We will email you as it moves through pickup and delivery.</p>
			<a href="%s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View status</a>
		</div>
	`, requestID, orderNumber, trackLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send confirmation to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Confirmation sent to %s\n", toEmail)
	return nil
}
