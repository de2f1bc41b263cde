package google

// DefaultOAuthScopes are the Google OAuth scopes requested during consent.
// These scopes are used consistently across the application.
//
// The scopes provide access to:
//   - Gmail: read-only (messages, labels, profile)
//   - User info: email address for account identification
var DefaultOAuthScopes = []string{
	// OpenID Connect scope (required for user info)
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scope. Read-only covers everything the exposed tools need,
	// including users.getProfile.
	"https://www.googleapis.com/auth/gmail.readonly",
}
