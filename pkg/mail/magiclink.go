package mail

import (
	"bytes"
	"html/template"
)

const MagicLinkSubject = "Sign in to Stanza"

var magicLinkTmpl = template.Must(template.New("magiclink").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f9fafb; padding: 40px 0;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 40px;">
    <h1 style="font-family: Georgia, serif; text-align: center;">Stanza</h1>
    <p>Hello,</p>
    <p>Click the button below to sign in to your Stanza account:</p>
    <p style="text-align: center;">
      <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background: #000; color: #fff; text-decoration: none; border-radius: 4px;">Sign in to Stanza</a>
    </p>
    <p style="color: #6b7280; font-size: 14px;">Or copy and paste this link into your browser:</p>
    <p style="color: #6b7280; font-size: 14px; word-break: break-all;">{{.Link}}</p>
    <hr style="border: none; border-top: 1px solid #e5e7eb;">
    <p style="color: #9ca3af; font-size: 12px;">This link will expire in 15 minutes. If you didn't request this email, you can safely ignore it.</p>
    <p style="color: #9ca3af; font-size: 12px;">Sent to {{.Email}}</p>
  </div>
</body>
</html>`))

func MagicLinkHTML(appURL, token, email string) (string, error) {
	var buf bytes.Buffer
	err := magicLinkTmpl.Execute(&buf, struct {
		Link  string
		Email string
	}{
		Link:  appURL + "?token=" + token,
		Email: email,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
