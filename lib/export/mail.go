package export

import (
	"bytes"
	"fmt"
	"net/smtp"
	"searchdist/lib/searchdist"
	"strings"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) Configured() bool {
	return c.Server != "" && c.EmailAddress != ""
}

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func defaultSend(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

// Mailer sends a finished table as a csv attachment.
type Mailer struct {
	config SmtpConfig
	send   sendFunc
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config, send: defaultSend}
}

func (m Mailer) message(to []string, table searchdist.ResultTable, layout searchdist.Layout, period string) (*email.Email, error) {
	contents, err := EncodeCSV(table, layout)
	if err != nil {
		return nil, err
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("searchdist <%s>", m.config.EmailAddress)
	mail.To = to
	mail.Subject = fmt.Sprintf("Search visits distribution %s", period)
	mail.Text = []byte(fmt.Sprintf(
		"Attached are %d rows of search visits distribution data for %s.\n",
		table.Len(), period,
	))
	_, err = mail.Attach(bytes.NewReader(contents), FileName, "text/csv")
	if err != nil {
		return nil, err
	}
	return mail, nil
}

// Send mails the table. Servers that do not support AUTH are retried
// without it.
func (m Mailer) Send(to []string, table searchdist.ResultTable, layout searchdist.Layout, period string) error {
	if !m.config.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	mail, err := m.message(to, table, layout, period)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err = m.send(mail, addr, smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(mail, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
