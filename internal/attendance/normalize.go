package attendance

import (
	"errors"
	"time"

	"qrattend/internal/scanner"
)

// ErrInvalidServerResponse means the upstream accepted the scan but its
// response carries no student identifier anywhere. Fatal for the scan.
var ErrInvalidServerResponse = errors.New("invalid_server_response: upstream response is missing the student identifier")

// RawStudent holds the student fields the upstream may return in any of
// three positions: nested under studentInfo, at the top level, or nested
// under student.
type RawStudent struct {
	ID              string `json:"id"`
	IndexNumber     string `json:"indexNumber"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	MessageStatus   string `json:"messageStatus"`
	ParentTelephone string `json:"parent_telephone"`
	StudentEmail    string `json:"student_email"`
	Email           string `json:"email"`
	Address         string `json:"address"`
}

// RawResponse is the union of the response shapes the attendance endpoints
// return. The embedded RawStudent captures flat top-level fields.
type RawResponse struct {
	RawStudent
	StudentInfo      *RawStudent `json:"studentInfo"`
	Student          *RawStudent `json:"student"`
	AttendanceStatus string      `json:"attendanceStatus"`
	Message          string      `json:"message"`
	Timestamp        string      `json:"timestamp"`
}

// resolve walks the shape variants in their fixed precedence order:
// studentInfo, top level, student, then the scanned identity, then a default.
func (r RawResponse) resolve(field func(RawStudent) string, scanned, def string) string {
	if r.StudentInfo != nil {
		if v := field(*r.StudentInfo); v != "" {
			return v
		}
	}
	if v := field(r.RawStudent); v != "" {
		return v
	}
	if r.Student != nil {
		if v := field(*r.Student); v != "" {
			return v
		}
	}
	if scanned != "" {
		return scanned
	}
	return def
}

// Normalize reconciles a raw upstream response with the originally scanned
// identity into exactly one Event. capture is the scan time, used when the
// server omits a timestamp.
func Normalize(resp RawResponse, scanned scanner.StudentIdentity, capture time.Time) (Event, error) {
	index := resp.resolve(func(s RawStudent) string { return s.IndexNumber }, scanned.IndexNumber, "")
	if index == "" {
		return Event{}, ErrInvalidServerResponse
	}

	status := resp.AttendanceStatus
	if status == "" {
		status = resp.resolve(func(s RawStudent) string { return s.Status }, "", string(StatusEntered))
	}

	ts := capture
	if resp.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, resp.Timestamp); err == nil {
			ts = parsed
		}
	}

	email := resp.resolve(func(s RawStudent) string {
		if s.StudentEmail != "" {
			return s.StudentEmail
		}
		return s.Email
	}, scanned.StudentEmail, "")

	return Event{
		ID:            resp.resolve(func(s RawStudent) string { return s.ID }, "", ""),
		IndexNumber:   index,
		Name:          resp.resolve(func(s RawStudent) string { return s.Name }, scanned.Name, ""),
		Status:        Status(status),
		Timestamp:     ts,
		MessageStatus: MessageStatus(resp.resolve(func(s RawStudent) string { return s.MessageStatus }, "", string(MessagePending))),
		ParentTelephone: resp.resolve(func(s RawStudent) string { return s.ParentTelephone },
			scanned.ParentTelephone, ""),
		StudentEmail: email,
		Address:      resp.resolve(func(s RawStudent) string { return s.Address }, scanned.Address, ""),
	}, nil
}
