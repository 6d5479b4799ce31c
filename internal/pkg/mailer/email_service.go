package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReceiptIssued(toEmail, memberName, receiptNumber string, amountCents int64, currency string) error
	SendPaymentFailed(toEmail, memberName string, amountCents int64, currency string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	orgName     string
}

func NewEmailService(host string, port int, username, password, senderEmail, orgName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		orgName:     orgName,
	}
}

func (s *emailService) SendReceiptIssued(toEmail, memberName, receiptNumber string, amountCents int64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your donation receipt %s", receiptNumber))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you for your gift, %s!</h2>
			<p>Your donation of <strong>%s %.2f</strong> has been received.</p>
			<p>Receipt number: <strong>%s</strong></p>
			<p>Please keep this receipt for your tax records.</p>
			<p>&mdash; %s</p>
		</div>
	`, memberName, currency, float64(amountCents)/100, receiptNumber, s.orgName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return err
	}
	return nil
}

func (s *emailService) SendPaymentFailed(toEmail, memberName string, amountCents int64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your scheduled donation could not be processed")

	// Donors never see processor error detail; scheduled charges retry on
	// the next cycle automatically.
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your scheduled donation of <strong>%s %.2f</strong> could not be processed.</p>
			<p>No action is needed &mdash; we will retry automatically. If the problem
			persists, please update your payment method.</p>
			<p>&mdash; %s</p>
		</div>
	`, memberName, currency, float64(amountCents)/100, s.orgName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return err
	}
	return nil
}
