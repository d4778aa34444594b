package export

import (
	"bytes"
	"errors"
	"net/smtp"
	"searchdist/lib/searchdist"
	"searchdist/lib/similarweb"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func sampleTable() searchdist.ResultTable {
	return searchdist.ResultTable{Rows: []searchdist.MetricRow{
		{
			Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-01",
			TotalSearchVisits: ptr(100), BrandedVisits: ptr(60), NonBrandedVisits: ptr(40),
		},
		{
			Site: "example.com", Country: "us", Device: similarweb.Desktop, Period: "2023-02",
			TotalSearchVisits: ptr(110),
		},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, sampleTable(), searchdist.FullLayout)
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"site,country,device,period,total_search_visits,branded_visits,non_branded_visits",
		"example.com,us,desktop,2023-01,100,60,40",
		"example.com,us,desktop,2023-02,110,,",
		"",
	}, "\n"), buf.String())
}

func TestWriteCSVCompact(t *testing.T) {
	contents, err := EncodeCSV(sampleTable(), searchdist.CompactLayout(1, 1))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Equal(t, "site,period,total_search_visits,branded_visits,non_branded_visits", lines[0])
	require.Equal(t, "example.com,2023-02,110,,", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	contents, err := EncodeCSV(searchdist.ResultTable{}, searchdist.FullLayout)
	require.NoError(t, err)
	require.Equal(t, "site,country,device,period,total_search_visits,branded_visits,non_branded_visits\n", string(contents))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sampleTable(), searchdist.FullLayout)
	out := buf.String()
	require.Contains(t, out, "example.com")
	require.Contains(t, out, "2023-02")
	require.Contains(t, out, "2 rows")

	buf.Reset()
	RenderFailures(&buf, []FailureRow{{Site: "a.com", Country: "us", Device: "mobile", Status: 403, Message: "forbidden"}})
	require.Contains(t, buf.String(), "403")
	require.Contains(t, buf.String(), "forbidden")

	buf.Reset()
	RenderFailures(&buf, nil)
	require.Empty(t, buf.String())
}

func TestMailerSend(t *testing.T) {
	var sent []*email.Email
	var auths []smtp.Auth
	mailer := Mailer{
		config: SmtpConfig{Server: "smtp.example.com", Port: 587, EmailAddress: "bot@example.com", Password: "pw"},
		send: func(mail *email.Email, addr string, auth smtp.Auth) error {
			require.Equal(t, "smtp.example.com:587", addr)
			sent = append(sent, mail)
			auths = append(auths, auth)
			if auth != nil {
				return errors.New("smtp: server doesn't support AUTH")
			}
			return nil
		},
	}

	err := mailer.Send([]string{"me@example.com"}, sampleTable(), searchdist.FullLayout, "2023-01..2023-03")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	require.NotNil(t, auths[0])
	require.Nil(t, auths[1])

	mail := sent[1]
	require.Equal(t, []string{"me@example.com"}, mail.To)
	require.Len(t, mail.Attachments, 1)
	require.Equal(t, FileName, mail.Attachments[0].Filename)
	require.Contains(t, string(mail.Attachments[0].Content), "example.com,us,desktop,2023-01,100,60,40")
}

func TestMailerNotConfigured(t *testing.T) {
	err := NewMailer(SmtpConfig{}).Send([]string{"me@example.com"}, sampleTable(), searchdist.FullLayout, "")
	require.Error(t, err)

	err = NewMailer(SmtpConfig{Server: "smtp.example.com", EmailAddress: "bot@example.com"}).
		Send(nil, sampleTable(), searchdist.FullLayout, "")
	require.ErrorContains(t, err, "no recipients")
}
