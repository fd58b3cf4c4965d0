package report

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

type staticTokens struct{ token string }

func (s staticTokens) Token(_ context.Context) string { return s.token }
func (s staticTokens) Invalidate(_ context.Context)   {}

func TestFetchPreviewDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports/dailyAttendanceReport", r.URL.Path)
		require.Equal(t, "2025-03-10", r.URL.Query().Get("date"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"students":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, false, staticTokens{token: "tok"})
	payload, err := c.FetchPreview(context.Background(), dailyQuery("2025-03-10"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"students":[]}`, string(payload))
}

func TestFetchPreviewRangeParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports/individualStudentReport", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "2025-03-01", q.Get("startDate"))
		require.Equal(t, "2025-03-10", q.Get("endDate"))
		require.Equal(t, "stu-1", q.Get("studentId"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	start, _ := time.Parse(DateLayout, "2025-03-01")
	end, _ := time.Parse(DateLayout, "2025-03-10")
	c := NewClient(srv.URL, false, staticTokens{})
	_, err := c.FetchPreview(context.Background(), Query{
		Type: TypeIndividual, StartDate: start, EndDate: end, StudentID: "stu-1",
	})
	require.NoError(t, err)
}

func TestFetchPreviewServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "report generation failed"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, false, staticTokens{})
	_, err := c.FetchPreview(context.Background(), dailyQuery("2025-03-10"))

	var serverErr *attendance.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "report generation failed", serverErr.Error())
}

func TestFetchPreviewSkipAssemblesCleanly(t *testing.T) {
	c := NewClient("http://unused", true, staticTokens{})
	for _, typ := range []Type{TypeDaily, TypeWeekly, TypeMonthly, TypeIndividual} {
		q := Query{Type: typ, Date: time.Now(), StartDate: time.Now(), EndDate: time.Now(), StudentID: "stu-1"}
		payload, err := c.FetchPreview(context.Background(), q)
		require.NoError(t, err)

		p := NewAssembler(time.UTC).Assemble(q, payload)
		assert.False(t, p.Empty, "type %s", typ)
	}
}
