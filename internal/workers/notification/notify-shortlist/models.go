// internal/workers/notification/notify-shortlist/models.go
package notifyshortlist

type Input struct {
	JobID            string                 `json:"jobId"`
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "recruiter" or "candidate"
	NotificationType string                 `json:"notificationType"`
	MinFit           int                    `json:"minFit,omitempty"`
	Limit            int                    `json:"limit,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	ShortlistSize  int    `json:"shortlistSize"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeShortlistReady = "shortlist_ready"
	TypeScorePublished = "score_published"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeRecruiter = "recruiter"
	RecipientTypeCandidate = "candidate"
)
