package report

import (
	"encoding/json"
	"strconv"
	"time"
)

// flexTime decodes the times the report endpoints emit in whatever shape the
// backing store produced: RFC 3339 strings, bare dates, epoch milliseconds,
// or Mongo extended JSON ({"$date": ...}, {"$date": {"$numberLong": ...}}).
type flexTime struct {
	t  time.Time
	ok bool
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	*f = flexTime{}
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.t, f.ok = parseTimeString(s)
		return nil
	}

	var millis float64
	if err := json.Unmarshal(data, &millis); err == nil {
		f.t, f.ok = time.UnixMilli(int64(millis)).UTC(), true
		return nil
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Date != nil {
		if err := json.Unmarshal(wrapped.Date, &s); err == nil {
			f.t, f.ok = parseTimeString(s)
			return nil
		}
		var long struct {
			NumberLong string `json:"$numberLong"`
		}
		if err := json.Unmarshal(wrapped.Date, &long); err == nil && long.NumberLong != "" {
			if ms, err := strconv.ParseInt(long.NumberLong, 10, 64); err == nil {
				f.t, f.ok = time.UnixMilli(ms).UTC(), true
			}
			return nil
		}
	}

	// Unrecognized shapes render as N/A rather than failing the whole preview.
	return nil
}

func parseTimeString(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// previewRecord is one attendance record inside a history or individual
// report payload.
type previewRecord struct {
	Date      flexTime `json:"date"`
	Status    string   `json:"status"`
	EntryTime flexTime `json:"entryTime"`
	LeaveTime flexTime `json:"leaveTime"`
}

// previewStudent is one student entry in a daily, weekly or monthly payload.
type previewStudent struct {
	Name              string          `json:"name"`
	IndexNumber       string          `json:"indexNumber"`
	Status            string          `json:"status"`
	EntryTime         flexTime        `json:"entryTime"`
	LeaveTime         flexTime        `json:"leaveTime"`
	Month             string          `json:"month"`
	DaysPresent       *int            `json:"daysPresent"`
	DaysAbsent        *int            `json:"daysAbsent"`
	AttendanceRate    *float64        `json:"attendanceRate"`
	AttendanceHistory []previewRecord `json:"attendanceHistory"`
}

// previewEnvelope is the union of object-shaped payloads the four report
// endpoints return. Array-shaped payloads are tried separately.
type previewEnvelope struct {
	Students          []previewStudent `json:"students"`
	Data              json.RawMessage  `json:"data"`
	AttendanceRecords []previewRecord  `json:"attendanceRecords"`
	Student           *struct {
		AttendanceRecords []previewRecord `json:"attendanceRecords"`
	} `json:"student"`
}

// Preview is the assembled, render-ready report table. Rows hold display
// strings so the JSON view and the workbook writer share one projection.
type Preview struct {
	Type    Type       `json:"reportType"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
}
