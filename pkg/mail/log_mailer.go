package mail

import (
	"github.com/sirupsen/logrus"
)

// LogMailer writes mail to the log instead of delivering it. Used in
// development so the flows that send OTPs and credentials work without
// an SMTP server.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a new log-backed mailer
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email instead of sending it.
func (m *LogMailer) Send(to, subject, htmlBody string) error {
	m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    htmlBody,
	}).Info("mail (dev mode, not sent)")
	return nil
}
