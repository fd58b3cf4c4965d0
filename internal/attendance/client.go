package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qrattend/internal/scanner"
)

// ErrNetwork means the upstream attendance server could not be reached at all.
var ErrNetwork = errors.New("network_error: attendance server unreachable")

// ServerError is an upstream HTTP error whose message, when present, is
// surfaced to the caller verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("attendance server error (%d)", e.StatusCode)
}

// TokenSource supplies the bearer credential attached to every upstream
// request. Invalidate is called on 401 responses (global logout).
type TokenSource interface {
	Token(ctx context.Context) string
	Invalidate(ctx context.Context)
}

// Client calls the upstream attendance server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
	Tokens  TokenSource
}

// New creates a client. Skip short-circuits all calls with canned responses
// for development without an upstream server.
func New(baseURL string, skip bool, tokens TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Skip:    skip,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type markRequest struct {
	QRCodeData   scanner.StudentIdentity `json:"qrCodeData"`
	DeviceInfo   string                  `json:"deviceInfo"`
	ScanLocation string                  `json:"scanLocation"`
}

// MarkByQR submits a scanned identity for attendance marking and returns the
// raw, variably shaped response body. The identity must carry an indexNumber.
func (c *Client) MarkByQR(ctx context.Context, id scanner.StudentIdentity, deviceInfo, scanLocation string) (RawResponse, error) {
	if !id.Valid() {
		return RawResponse{}, scanner.ErrUnrecognizedPayload
	}
	id.ParentTelephone = stripSpaces(id.ParentTelephone)

	if c.Skip {
		return RawResponse{
			StudentInfo: &RawStudent{
				IndexNumber:     id.IndexNumber,
				Name:            id.Name,
				ParentTelephone: id.ParentTelephone,
				StudentEmail:    id.StudentEmail,
				Address:         id.Address,
			},
			AttendanceStatus: string(StatusEntered),
			Message:          "Attendance marked (mock)",
		}, nil
	}

	var out RawResponse
	body := markRequest{QRCodeData: id, DeviceInfo: deviceInfo, ScanLocation: scanLocation}
	if err := c.do(ctx, http.MethodPost, "/students/mark-attendance", body, &out); err != nil {
		return RawResponse{}, err
	}
	return out, nil
}

// ListStudents fetches the registered students, used for QR generation and
// for naming individual report files.
func (c *Client) ListStudents(ctx context.Context) ([]RawStudent, error) {
	if c.Skip {
		return []RawStudent{
			{ID: "mock-1", IndexNumber: "S100", Name: "Mock Student", ParentTelephone: "+94770000000"},
		}, nil
	}

	var out struct {
		Students []RawStudent `json:"students"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/students", nil, &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
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
		return &ServerError{StatusCode: resp.StatusCode, Message: errBody.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode upstream response: %w", err)
		}
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
