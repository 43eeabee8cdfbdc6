package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	Recipients   []string // back-office addresses that receive closing summaries
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// ReportSummary is the data rendered into a closing summary email. It is
// built exclusively from a sealed report, never from live transactional data.
type ReportSummary struct {
	FormattedNumber string
	StoreID         string
	TerminalID      string
	ReportDate      string
	GeneratedAt     string
	GrossSales      string
	NetSales        string
	TaxTotal        string
	ExpectedCash    string
	ActualCash      string
	Variance        string
	VarianceLevel   string
	ApprovalStatus  string
	ContentHash     string
}

var reportEmailTmpl = template.Must(template.New("zreport").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Z-Report {{.FormattedNumber}}</h2>
  <p>Terminal {{.TerminalID}} &middot; {{.ReportDate}} &middot; generated {{.GeneratedAt}}</p>
  <table cellpadding="6" cellspacing="0" border="0">
    <tr><td>Gross sales</td><td align="right">{{.GrossSales}}</td></tr>
    <tr><td>Net sales</td><td align="right">{{.NetSales}}</td></tr>
    <tr><td>Tax</td><td align="right">{{.TaxTotal}}</td></tr>
    <tr><td>Expected cash</td><td align="right">{{.ExpectedCash}}</td></tr>
    <tr><td>Counted cash</td><td align="right">{{.ActualCash}}</td></tr>
    <tr><td><b>Variance</b></td><td align="right"><b>{{.Variance}} ({{.VarianceLevel}})</b></td></tr>
  </table>
  <p>Approval: {{.ApprovalStatus}}</p>
  <p style="font-size: 11px; color: #888;">Integrity hash: {{.ContentHash}}</p>
</body>
</html>
`))

// SendReportSummary sends the closing summary to the configured recipients.
func (s *EmailService) SendReportSummary(summary *ReportSummary) error {
	if len(s.config.Recipients) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := reportEmailTmpl.Execute(&body, summary); err != nil {
		return fmt.Errorf("failed to render report email: %w", err)
	}

	subject := fmt.Sprintf("Z-Report %s (variance: %s)", summary.FormattedNumber, summary.VarianceLevel)
	for _, to := range s.config.Recipients {
		message := s.buildHTMLEmail(to, subject, body.String())
		if err := s.sendEmail(to, message); err != nil {
			return err
		}
	}
	return nil
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	return smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
}

// buildHTMLEmail constructs an HTML email message with proper headers
func (s *EmailService) buildHTMLEmail(to, subject, htmlContent string) []byte {
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)
	return msg.Bytes()
}
