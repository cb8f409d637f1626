package mail

import "fmt"

// OTPBody renders the one-time passcode email.
func OTPBody(code string, expiryMinutes int) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Your verification code</h2>
<p>Use the code below to continue. It expires in %d minutes.</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
<p>If you did not request this code, you can ignore this email.</p>
</div>`, expiryMinutes, code)
}

// BusinessApprovalBody renders the manual verification email with the
// temporary password a business uses for its first login.
func BusinessApprovalBody(businessName, tempPassword string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Welcome aboard, %s</h2>
<p>Your business account has been verified. Sign in with the temporary password below and change it right away.</p>
<p style="font-size:20px;font-weight:bold">%s</p>
</div>`, businessName, tempPassword)
}

// WelcomeBody renders the post-verification welcome email for consumers.
func WelcomeBody(firstName string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Welcome, %s!</h2>
<p>Your account is verified. Start exploring offers near you.</p>
</div>`, firstName)
}
