// Package mail delivers account verification emails.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const verificationSubject = "Verify your email address"

var verificationTmpl = template.Must(template.New("verify").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify your email address</h2>
  <p>Thank you for registering. Please click the button below to verify your email address:</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #4F46E5; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; margin: 20px 0;">Verify Email</a>
  <p>If you did not create an account, you can ignore this email.</p>
</div>
`))

// VerificationLink returns <appURL>/verify-email?token=<token>.
func VerificationLink(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

// buildVerification renders a complete RFC 5322 message ready for SMTP DATA.
func buildVerification(from, to, link, domain string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	if err := verificationTmpl.Execute(&body, struct{ Link string }{link}); err != nil {
		return nil, fmt.Errorf("render verification email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", verificationSubject)
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
