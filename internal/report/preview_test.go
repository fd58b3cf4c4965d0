package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTimeShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"rfc3339", `"2025-03-10T08:15:00Z"`, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC), true},
		{"bare date", `"2025-03-10"`, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"no zone", `"2025-03-10T08:15:00"`, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC), true},
		{"epoch millis", `1741594500000`, time.UnixMilli(1741594500000).UTC(), true},
		{"mongo string", `{"$date":"2025-03-10T08:15:00Z"}`, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC), true},
		{"mongo numberLong", `{"$date":{"$numberLong":"1741594500000"}}`, time.UnixMilli(1741594500000).UTC(), true},
		{"null", `null`, time.Time{}, false},
		{"garbage string", `"last tuesday"`, time.Time{}, false},
		{"unknown object", `{"seconds":12}`, time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f flexTime
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			assert.Equal(t, tc.ok, f.ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(f.t), "got %v want %v", f.t, tc.want)
			}
		})
	}
}

func dailyQuery(day string) Query {
	d, _ := time.Parse(DateLayout, day)
	return Query{Type: TypeDaily, Date: d}
}

func TestAssembleDailyFromHistory(t *testing.T) {
	payload := []byte(`{"students":[{
		"name":"Amara Silva","indexNumber":"ST-1","status":"absent",
		"attendanceHistory":[
			{"date":"2025-03-10","status":"entered","entryTime":"2025-03-10T08:00:00Z"},
			{"date":"2025-03-10","status":"left","entryTime":"2025-03-10T08:00:00Z","leaveTime":"2025-03-10T14:30:00Z"},
			{"date":"2025-03-11","status":"entered"}
		]}]}`)

	a := NewAssembler(time.UTC)
	p := a.Assemble(dailyQuery("2025-03-10"), payload)

	require.Equal(t, 1, p.Count)
	row := p.Rows[0]
	// The last entry matching the requested day wins over top-level status.
	assert.Equal(t, []string{"Amara Silva", "ST-1", "Left", "8:00:00 AM", "2:30:00 PM", "6h 30m"}, row)
}

func TestAssembleDailyTopLevelFallback(t *testing.T) {
	payload := []byte(`{"students":[{"name":"Nimal","indexNumber":"ST-2","status":"late",
		"entryTime":"2025-03-10T09:05:00Z"}]}`)

	a := NewAssembler(time.UTC)
	p := a.Assemble(dailyQuery("2025-03-10"), payload)

	require.Equal(t, 1, p.Count)
	assert.Equal(t, []string{"Nimal", "ST-2", "Late", "9:05:00 AM", "N/A", "N/A"}, p.Rows[0])
}

func TestAssembleDailyArrayPayload(t *testing.T) {
	payload := []byte(`[{"name":"Amara","indexNumber":"ST-1","status":"entered"}]`)
	p := NewAssembler(time.UTC).Assemble(dailyQuery("2025-03-10"), payload)
	assert.Equal(t, 1, p.Count)
}

func TestAssembleDailyDataBeforeStudents(t *testing.T) {
	// A present data key wins for daily payloads even when students also exists.
	payload := []byte(`{"data":[{"name":"From Data","indexNumber":"D-1","status":"entered"}],
		"students":[{"name":"From Students","indexNumber":"S-1","status":"entered"}]}`)
	p := NewAssembler(time.UTC).Assemble(dailyQuery("2025-03-10"), payload)
	require.Equal(t, 1, p.Count)
	assert.Equal(t, "From Data", p.Rows[0][0])
}

func TestAssembleDailyEmpty(t *testing.T) {
	a := NewAssembler(time.UTC)
	for _, payload := range []string{`{}`, `{"students":[]}`, `"unexpected"`} {
		p := a.Assemble(dailyQuery("2025-03-10"), []byte(payload))
		assert.True(t, p.Empty, "payload %s", payload)
		assert.Equal(t, "No data available for selected date", p.Message)
		assert.Zero(t, p.Count)
	}
}

func TestAssembleNegativeDurationRendersNA(t *testing.T) {
	payload := []byte(`{"students":[{"name":"X","indexNumber":"ST-3","status":"left",
		"entryTime":"2025-03-10T14:00:00Z","leaveTime":"2025-03-10T08:00:00Z"}]}`)
	p := NewAssembler(time.UTC).Assemble(dailyQuery("2025-03-10"), payload)
	require.Equal(t, 1, p.Count)
	assert.Equal(t, "N/A", p.Rows[0][5])
}

func TestAssembleWeekly(t *testing.T) {
	payload := []byte(`{"students":[
		{"name":"Amara","indexNumber":"ST-1","daysPresent":4,"daysAbsent":1,"attendanceRate":87.456},
		{"name":"Nimal","indexNumber":"ST-2"}]}`)

	p := NewAssembler(time.UTC).Assemble(Query{Type: TypeWeekly}, payload)

	require.Equal(t, 2, p.Count)
	assert.Equal(t, []string{"Amara", "ST-1", "4", "1", "87.5%"}, p.Rows[0])
	// Missing counters render as zero, a missing rate as N/A.
	assert.Equal(t, []string{"Nimal", "ST-2", "0", "0", "N/A"}, p.Rows[1])
}

func TestAssembleMonthlyHasMonthColumn(t *testing.T) {
	payload := []byte(`{"students":[{"name":"Amara","indexNumber":"ST-1","month":"March",
		"daysPresent":20,"daysAbsent":2,"attendanceRate":90.9}]}`)

	p := NewAssembler(time.UTC).Assemble(Query{Type: TypeMonthly}, payload)

	assert.Equal(t, []string{"Name", "Index Number", "Month", "Days Present", "Days Absent", "Attendance Rate"}, p.Columns)
	require.Equal(t, 1, p.Count)
	assert.Equal(t, []string{"Amara", "ST-1", "March", "20", "2", "90.9%"}, p.Rows[0])
}

func TestAssembleIndividualShapes(t *testing.T) {
	record := `{"date":"2025-03-10","status":"entered","entryTime":"2025-03-10T08:00:00Z"}`
	shapes := []string{
		`[` + record + `]`,
		`{"student":{"attendanceRecords":[` + record + `]}}`,
		`{"data":[` + record + `]}`,
		`{"attendanceRecords":[` + record + `]}`,
	}

	a := NewAssembler(time.UTC)
	for _, payload := range shapes {
		p := a.Assemble(Query{Type: TypeIndividual}, []byte(payload))
		require.Equal(t, 1, p.Count, "payload %s", payload)
		assert.Equal(t, []string{"Mar 10, 2025", "Present", "8:00:00 AM", "N/A", "N/A"}, p.Rows[0])
	}
}

func TestAssembleIndividualEmpty(t *testing.T) {
	p := NewAssembler(time.UTC).Assemble(Query{Type: TypeIndividual}, []byte(`{}`))
	assert.True(t, p.Empty)
	assert.Equal(t, "No data available for selected student", p.Message)
}

func TestAssembleRendersInZone(t *testing.T) {
	colombo := time.FixedZone("Asia/Colombo", int((5*time.Hour + 30*time.Minute).Seconds()))
	payload := []byte(`{"students":[{"name":"Amara","indexNumber":"ST-1","status":"entered",
		"entryTime":"2025-03-10T02:30:00Z"}]}`)

	p := NewAssembler(colombo).Assemble(dailyQuery("2025-03-10"), payload)
	require.Equal(t, 1, p.Count)
	assert.Equal(t, "8:00:00 AM", p.Rows[0][3])
}
