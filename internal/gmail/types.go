package gmail

// Profile is the authenticated user's mailbox profile, as returned by the
// Gmail users.getProfile endpoint.
type Profile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int64  `json:"messagesTotal"`
	ThreadsTotal  int64  `json:"threadsTotal"`
}

// Label is a Gmail label summary.
type Label struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Unread   int64  `json:"unread"`
	Messages int64  `json:"messages"`
}

// MessageSummary is a lightweight view of a Gmail message used in listings.
type MessageSummary struct {
	ID      string `json:"id"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}
