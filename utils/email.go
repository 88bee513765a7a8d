package utils

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. It is constructed once at
// startup and shared; nothing reads SMTP settings at send time.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer builds a Mailer from SMTP settings
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// NewMailerFromEnv builds a Mailer from string-typed config values
func NewMailerFromEnv(host, port, username, password, from string) *Mailer {
	p, err := strconv.Atoi(port)
	if err != nil || p == 0 {
		p = 587
	}
	return NewMailer(host, p, username, password, from)
}

// Send sends an HTML email
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendOTP sends a verification OTP
func (m *Mailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to ProPlayHub!</h2>
		<p>Thank you for signing up. Please use the following OTP to verify your email address:</p>
		<h1 style="color: #6C5CE7; font-size: 32px; letter-spacing: 5px;">%s</h1>
		<p>This OTP will expire in 15 minutes.</p>
		<p>If you didn't request this OTP, please ignore this email.</p>
	`, otp)
	return m.Send(to, "Your ProPlayHub Verification OTP", body)
}

// SendReceipt sends a purchase receipt for a new subscription
func (m *Mailer) SendReceipt(to, packageName, period string, price float64) error {
	body := fmt.Sprintf(`
		<h2>Thanks for your purchase!</h2>
		<p>Your subscription is now active:</p>
		<ul>
			<li><b>Package:</b> %s</li>
			<li><b>Billing period:</b> %s</li>
			<li><b>Price per period:</b> %.2f</li>
		</ul>
		<p>You can manage your subscription from the ProPlayHub app at any time.</p>
	`, packageName, period, price)
	return m.Send(to, "Your ProPlayHub Receipt", body)
}
