// internal/models/notification.go
package models

type Notification struct {
	ID            string                 `json:"id"`
	RecipientID   string                 `json:"recipientId"`
	RecipientType string                 `json:"recipientType"` // "recruiter" or "candidate"
	Type          string                 `json:"type"`          // "shortlist_ready", "score_published"
	Channel       string                 `json:"channel"`       // "email", "sms"
	Status        string                 `json:"status"`        // "sent", "failed", "disabled"
	Payload       map[string]interface{} `json:"payload"`
	SentAt        string                 `json:"sentAt"`
	CreatedAt     string                 `json:"createdAt"`
}

type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
	Version  string `json:"version"`
}
