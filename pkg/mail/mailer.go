package mail

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// Send delivers an HTML email to a single recipient.
	Send(to, subject, htmlBody string) error
}
