package attendance

import "time"

// Status is the raw attendance state code used by the upstream server.
type Status string

const (
	StatusEntered Status = "entered"
	StatusLeft    Status = "left"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// MessageStatus tracks delivery of the parent notification for an event.
type MessageStatus string

const (
	MessagePending MessageStatus = "pending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

// Event is the canonical record of one scan. It is built exactly once by
// Normalize and never mutated afterwards; the journal columns DeviceInfo and
// Location are filled in when the event is recorded.
type Event struct {
	ID              string        `json:"id"`
	IndexNumber     string        `json:"indexNumber"`
	Name            string        `json:"name"`
	Status          Status        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	MessageStatus   MessageStatus `json:"messageStatus"`
	ParentTelephone string        `json:"parent_telephone"`
	StudentEmail    string        `json:"student_email"`
	Address         string        `json:"address"`
	DeviceInfo      string        `json:"deviceInfo,omitempty"`
	Location        string        `json:"scanLocation,omitempty"`
	CreatedAt       time.Time     `json:"createdAt,omitempty"`
}
