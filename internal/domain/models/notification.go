package models

// Notification is the outbound event emitted after issuance activity and by
// the low-stock report. Delivery is best-effort; a failed send never touches
// already-committed state.
type Notification struct {
	Subject       string `json:"subject"`
	RecipientRole Party  `json:"recipient_role"`
	Body          string `json:"body"`
}
