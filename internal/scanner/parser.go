package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnrecognizedPayload means no student identifier could be extracted from
// the decoded QR text.
var ErrUnrecognizedPayload = errors.New("unrecognized_qr_format: QR payload has no student identifier")

// StudentIdentity is the minimal identifying record carried by a student QR
// code. IndexNumber is the canonical identifier; an identity without one must
// not be submitted for attendance.
type StudentIdentity struct {
	IndexNumber     string `json:"indexNumber"`
	Name            string `json:"name,omitempty"`
	ParentTelephone string `json:"parent_telephone,omitempty"`
	StudentEmail    string `json:"student_email,omitempty"`
	Address         string `json:"address,omitempty"`
	RawData         string `json:"rawData,omitempty"`
}

// Valid reports whether the identity carries the canonical identifier.
func (s StudentIdentity) Valid() bool {
	return s.IndexNumber != ""
}

// ParsePayload classifies the decoded QR text and extracts a StudentIdentity.
// Precedence: JSON object, then URL with an indexNumber query parameter, then
// the whole text kept as opaque rawData. Only the first two can produce a
// valid identity; callers must check Valid before submitting.
func ParsePayload(text string) (StudentIdentity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return StudentIdentity{}, ErrUnrecognizedPayload
	}

	var id StudentIdentity
	if err := json.Unmarshal([]byte(text), &id); err == nil {
		return id, nil
	}

	if strings.Contains(text, "indexNumber=") {
		u, err := url.Parse(text)
		if err != nil {
			return StudentIdentity{}, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
		}
		q := u.Query()
		if index := q.Get("indexNumber"); index != "" {
			return StudentIdentity{IndexNumber: index, Name: q.Get("name")}, nil
		}
		return StudentIdentity{}, ErrUnrecognizedPayload
	}

	return StudentIdentity{RawData: text}, nil
}
