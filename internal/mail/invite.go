package mail

import (
	"bytes"
	"html/template"
	"net/url"
)

type InviteData struct {
	ProjectName string
	InviterName string
	InviteLink  string
	RejectLink  string
	ExpiryHours int
	Year        int
}

// InviteLinks builds the accept and reject links the frontend resolves.
func InviteLinks(frontendURL, token string) (accept, reject string) {
	query := url.Values{"token": {token}}.Encode()
	return frontendURL + "/invite/accept?" + query, frontendURL + "/invite/reject?" + query
}

var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Project Invitation</title>
</head>
<body style="margin:0;padding:0;background-color:#0f172a;font-family:'Helvetica Neue',Helvetica,Arial,sans-serif;">
  <table border="0" cellpadding="0" cellspacing="0" width="100%">
    <tr>
      <td align="center" style="padding:40px 20px;">
        <table border="0" cellpadding="0" cellspacing="0" width="100%" style="max-width:600px;background-color:#ffffff;border-radius:20px;">
          <tr>
            <td align="center" style="padding:48px 40px;background-color:#22c55e;">
              <h1 style="margin:0;color:#ffffff;font-size:32px;">You're Invited!</h1>
              <p style="margin:10px 0 0 0;color:#ffffff;font-size:16px;">Join your team on a new project</p>
            </td>
          </tr>
          <tr>
            <td style="padding:40px;color:#0f172a;font-size:16px;line-height:24px;">
              <p><strong>{{.InviterName}}</strong> has invited you to collaborate on <strong>{{.ProjectName}}</strong>.</p>
              <p>
                <a href="{{.InviteLink}}" style="display:inline-block;padding:14px 28px;background-color:#22c55e;color:#ffffff;border-radius:10px;text-decoration:none;">Accept Invitation</a>
                <a href="{{.RejectLink}}" style="display:inline-block;padding:14px 28px;color:#64748b;text-decoration:none;">Decline</a>
              </p>
              <p style="color:#64748b;font-size:14px;">This invitation expires in {{.ExpiryHours}} hours.</p>
            </td>
          </tr>
          <tr>
            <td align="center" style="padding:24px;color:#94a3b8;font-size:12px;">&copy; {{.Year}} Tracker</td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// InviteEmail renders the invitation for a single recipient.
func InviteEmail(from, to string, data InviteData) (Message, error) {
	var body bytes.Buffer
	if err := inviteTemplate.Execute(&body, data); err != nil {
		return Message{}, err
	}

	return Message{
		From:    from,
		To:      []string{to},
		Subject: "Invitation to join " + data.ProjectName,
		HTML:    body.String(),
	}, nil
}
