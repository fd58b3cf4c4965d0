package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qrattend/internal/attendance"
)

var endpointByType = map[Type]string{
	TypeDaily:      "/reports/dailyAttendanceReport",
	TypeWeekly:     "/reports/weeklyAttendanceReport",
	TypeMonthly:    "/reports/monthlyAttendanceReport",
	TypeIndividual: "/reports/individualStudentReport",
}

// Client fetches report preview payloads from the upstream report endpoints.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
	Tokens  attendance.TokenSource
}

// NewClient creates a report client. Skip serves canned payloads for
// development without an upstream server.
func NewClient(baseURL string, skip bool, tokens attendance.TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Skip:    skip,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPreview retrieves the raw preview payload for a validated query. The
// payload shape varies by endpoint; Assembler deals with that.
func (c *Client) FetchPreview(ctx context.Context, q Query) ([]byte, error) {
	if c.Skip {
		return mockPayload(q), nil
	}

	params := url.Values{}
	if q.Type == TypeDaily {
		params.Set("date", q.Date.Format(DateLayout))
	} else {
		params.Set("startDate", q.StartDate.Format(DateLayout))
		params.Set("endDate", q.EndDate.Format(DateLayout))
	}
	if q.StudentID != "" {
		params.Set("studentId", q.StudentID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+endpointByType[q.Type]+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.Tokens.Invalidate(ctx)
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &errBody)
		return nil, &attendance.ServerError{StatusCode: resp.StatusCode, Message: errBody.Message}
	}

	return io.ReadAll(resp.Body)
}

func mockPayload(q Query) []byte {
	switch q.Type {
	case TypeDaily:
		return []byte(`{"students":[{"name":"Mock Student","indexNumber":"S100","status":"entered",` +
			`"entryTime":"` + q.Date.Format(time.RFC3339) + `"}]}`)
	case TypeIndividual:
		return []byte(`{"student":{"attendanceRecords":[{"date":"` + q.StartDate.Format(DateLayout) +
			`","status":"entered"}]}}`)
	default:
		return []byte(`{"students":[{"name":"Mock Student","indexNumber":"S100",` +
			`"daysPresent":4,"daysAbsent":1,"attendanceRate":80.0}]}`)
	}
}
