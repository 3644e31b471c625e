// Package notify delivers one time codes by email.
package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const otpSubject = "Your PNP San Juan Login Verification Code"

// Email is a rendered message ready for any channel.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type otpData struct {
	Username      string
	Code          string
	ExpiryMinutes int
}

var otpText = texttemplate.Must(texttemplate.New("otp.txt").Parse(`Hello {{.Username}},

Your verification code for PNP San Juan is: {{.Code}}

This code will expire in {{.ExpiryMinutes}} minutes.

If you did not attempt to log in, please ignore this email or contact support.

Best regards,
PNP San Juan Team
`))

var otpHTML = htmltemplate.Must(htmltemplate.New("otp.html").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f4f4; }
  .content { background-color: white; padding: 30px; border-radius: 5px; }
  .otp-code { font-size: 32px; font-weight: bold; color: #007bff; text-align: center; padding: 20px; background-color: #f8f9fa; border-radius: 5px; letter-spacing: 5px; margin: 20px 0; }
  .footer { margin-top: 20px; font-size: 12px; color: #666; text-align: center; }
  .warning { color: #dc3545; font-size: 14px; }
</style>
</head>
<body>
  <div class="container">
    <div class="content">
      <h2>PNP San Juan - Login Verification</h2>
      <p>Hello <strong>{{.Username}}</strong>,</p>
      <p>Your verification code for PNP San Juan is:</p>
      <div class="otp-code">{{.Code}}</div>
      <p>This code will expire in <strong>{{.ExpiryMinutes}} minutes</strong>.</p>
      <p class="warning">If you did not attempt to log in, please ignore this email or contact support immediately.</p>
      <div class="footer"><p>Best regards,<br>PNP San Juan Team</p></div>
    </div>
  </div>
</body>
</html>
`))

// OTPEmail renders the login code email for username.
func OTPEmail(to, username, code string, expiryMinutes int) (Email, error) {
	data := otpData{Username: username, Code: code, ExpiryMinutes: expiryMinutes}

	var text, html bytes.Buffer
	if err := otpText.Execute(&text, data); err != nil {
		return Email{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := otpHTML.Execute(&html, data); err != nil {
		return Email{}, fmt.Errorf("failed to render html body: %w", err)
	}

	return Email{
		To:      to,
		Subject: otpSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
