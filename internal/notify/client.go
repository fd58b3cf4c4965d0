// Package notify talks to the WhatsApp messaging collaborator. The gateway
// only dispatches attendance updates and tracks delivery status; message
// transport is entirely the collaborator's problem.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qrattend/internal/attendance"
)

// MessageTypeAttendance tags automated attendance updates on the wire.
const MessageTypeAttendance = "attendance"

// Client calls the messaging service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip makes every send succeed without a network call.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FormatAttendanceMessage renders the parent-facing attendance update.
// Timestamps are shown in the institution's zone.
func FormatAttendanceMessage(evt attendance.Event, loc *time.Location) string {
	var verb string
	switch evt.Status {
	case attendance.StatusEntered:
		verb = "Entered School"
	case attendance.StatusLeft:
		verb = "Left School"
	case attendance.StatusLate:
		verb = "Arrived Late"
	default:
		verb = "Marked Present"
	}

	when := evt.Timestamp.In(loc).Format("Monday, January 2, 2006 3:04 PM")
	return fmt.Sprintf("Attendance Update\n\nStudent: %s\nIndex Number: %s\nStatus: %s\nTime: %s",
		evt.Name, evt.IndexNumber, verb, when)
}

type sendRequest struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Body string `json:"body"`
}

// SendAttendanceMessage dispatches one attendance update to the student's
// parent. No retries here; the worker records the outcome as sent or failed.
func (c *Client) SendAttendanceMessage(ctx context.Context, evt attendance.Event, loc *time.Location) error {
	if evt.ParentTelephone == "" {
		return fmt.Errorf("event %s has no parent telephone", evt.ID)
	}
	if c.Skip {
		return nil
	}

	payload, err := json.Marshal(sendRequest{
		To:   evt.ParentTelephone,
		Type: MessageTypeAttendance,
		Body: FormatAttendanceMessage(evt, loc),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("messaging service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messaging service error %s: %s", resp.Status, string(body))
	}
	return nil
}
