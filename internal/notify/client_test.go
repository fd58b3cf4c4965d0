package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattend/internal/attendance"
)

var colombo = time.FixedZone("Asia/Colombo", int((5*time.Hour + 30*time.Minute).Seconds()))

func TestFormatAttendanceMessage(t *testing.T) {
	evt := attendance.Event{
		Name:        "Amara Silva",
		IndexNumber: "ST-1",
		Status:      attendance.StatusEntered,
		Timestamp:   time.Date(2025, 3, 10, 2, 30, 0, 0, time.UTC),
	}

	msg := FormatAttendanceMessage(evt, colombo)
	assert.Contains(t, msg, "Student: Amara Silva")
	assert.Contains(t, msg, "Index Number: ST-1")
	assert.Contains(t, msg, "Status: Entered School")
	assert.Contains(t, msg, "Monday, March 10, 2025 8:00 AM")
}

func TestFormatAttendanceMessageVerbs(t *testing.T) {
	cases := map[attendance.Status]string{
		attendance.StatusEntered: "Entered School",
		attendance.StatusLeft:    "Left School",
		attendance.StatusLate:    "Arrived Late",
		attendance.Status("x"):   "Marked Present",
	}
	for status, verb := range cases {
		msg := FormatAttendanceMessage(attendance.Event{Status: status}, time.UTC)
		assert.Contains(t, msg, "Status: "+verb)
	}
}

func TestSendAttendanceMessage(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	evt := attendance.Event{
		ID:              "evt-1",
		Name:            "Amara",
		IndexNumber:     "ST-1",
		Status:          attendance.StatusLeft,
		ParentTelephone: "+94712345678",
	}
	require.NoError(t, c.SendAttendanceMessage(context.Background(), evt, time.UTC))

	assert.Equal(t, "+94712345678", got.To)
	assert.Equal(t, MessageTypeAttendance, got.Type)
	assert.Contains(t, got.Body, "Left School")
}

func TestSendAttendanceMessageNoTelephone(t *testing.T) {
	c := New("http://unused", false)
	err := c.SendAttendanceMessage(context.Background(), attendance.Event{ID: "evt-2"}, time.UTC)
	assert.Error(t, err)
}

func TestSendAttendanceMessageServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, false)
	err := c.SendAttendanceMessage(context.Background(),
		attendance.Event{ParentTelephone: "+94712345678"}, time.UTC)
	assert.ErrorContains(t, err, "429")
}

func TestSendAttendanceMessageSkip(t *testing.T) {
	c := New("http://unused", true)
	err := c.SendAttendanceMessage(context.Background(),
		attendance.Event{ParentTelephone: "+94712345678"}, time.UTC)
	assert.NoError(t, err)
}
