package report

import (
	"encoding/json"
	"fmt"
	"time"

	"qrattend/internal/attendance"
)

var columnsByType = map[Type][]string{
	TypeDaily:      {"Name", "Index Number", "Status", "Entry Time", "Leave Time", "Duration"},
	TypeWeekly:     {"Name", "Index Number", "Days Present", "Days Absent", "Attendance Rate"},
	TypeMonthly:    {"Name", "Index Number", "Month", "Days Present", "Days Absent", "Attendance Rate"},
	TypeIndividual: {"Date", "Status", "Entry Time", "Leave Time", "Duration"},
}

var emptyMessageByType = map[Type]string{
	TypeDaily:      "No data available for selected date",
	TypeWeekly:     "No data available for selected date range",
	TypeMonthly:    "No data available for selected date range",
	TypeIndividual: "No data available for selected student",
}

// Assembler projects raw report payloads into render-ready tables. All date
// and time cells are formatted in the institution's fixed zone so matching
// and display are the same for every caller.
type Assembler struct {
	loc *time.Location
}

// NewAssembler creates an assembler rendering in the given zone.
func NewAssembler(loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.UTC
	}
	return &Assembler{loc: loc}
}

// Assemble extracts the row list for the query's report type and renders the
// type-specific columns. Empty and unrecognized payloads produce the "no
// data" table, never an error.
func (a *Assembler) Assemble(q Query, payload []byte) Preview {
	switch q.Type {
	case TypeDaily:
		return a.daily(q, payload)
	case TypeWeekly, TypeMonthly:
		return a.aggregate(q, payload)
	case TypeIndividual:
		return a.individual(q, payload)
	default:
		return Preview{Type: q.Type, Empty: true, Message: "No data available"}
	}
}

// daily renders one row per student. When a student carries an attendance
// history, the last entry matching the requested date wins over the
// student's top-level status fields.
func (a *Assembler) daily(q Query, payload []byte) Preview {
	students, ok := extractStudents(payload, true)
	if !ok || len(students) == 0 {
		return a.noData(q.Type)
	}

	rows := make([][]string, 0, len(students))
	for _, st := range students {
		status, entry, leave := st.Status, st.EntryTime, st.LeaveTime
		if rec := lastMatching(st.AttendanceHistory, q.Date, a.loc); rec != nil {
			status, entry, leave = rec.Status, rec.EntryTime, rec.LeaveTime
		}
		rows = append(rows, []string{
			orNA(st.Name), orNA(st.IndexNumber), displayLabel(status),
			a.fmtTime(entry), a.fmtTime(leave), duration(entry, leave),
		})
	}
	return a.table(q.Type, rows)
}

// aggregate renders weekly and monthly summaries from precomputed counters.
func (a *Assembler) aggregate(q Query, payload []byte) Preview {
	students, ok := extractStudents(payload, false)
	if !ok || len(students) == 0 {
		return a.noData(q.Type)
	}

	rows := make([][]string, 0, len(students))
	for _, st := range students {
		row := []string{orNA(st.Name), orNA(st.IndexNumber)}
		if q.Type == TypeMonthly {
			row = append(row, orNA(st.Month))
		}
		row = append(row, countCell(st.DaysPresent), countCell(st.DaysAbsent), rateCell(st.AttendanceRate))
		rows = append(rows, row)
	}
	return a.table(q.Type, rows)
}

// individual renders one row per attendance record of the selected student.
func (a *Assembler) individual(q Query, payload []byte) Preview {
	records, ok := extractRecords(payload)
	if !ok || len(records) == 0 {
		return a.noData(q.Type)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			a.fmtDate(rec.Date), displayLabel(rec.Status),
			a.fmtTime(rec.EntryTime), a.fmtTime(rec.LeaveTime),
			duration(rec.EntryTime, rec.LeaveTime),
		})
	}
	return a.table(q.Type, rows)
}

func (a *Assembler) table(t Type, rows [][]string) Preview {
	return Preview{Type: t, Columns: columnsByType[t], Rows: rows, Count: len(rows)}
}

func (a *Assembler) noData(t Type) Preview {
	return Preview{Type: t, Columns: columnsByType[t], Empty: true, Message: emptyMessageByType[t]}
}

// extractStudents pulls the student list out of an array- or object-shaped
// payload. dataFirst selects the daily precedence (data before students);
// weekly and monthly check students first. The second return is false when
// the payload matches none of the known shapes.
func extractStudents(payload []byte, dataFirst bool) ([]previewStudent, bool) {
	var arr []previewStudent
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr, true
	}

	var env previewEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}

	var fromData []previewStudent
	dataPresent := env.Data != nil && json.Unmarshal(env.Data, &fromData) == nil

	if dataFirst {
		if dataPresent {
			return fromData, true
		}
		if env.Students != nil {
			return env.Students, true
		}
	} else {
		if env.Students != nil {
			return env.Students, true
		}
		if dataPresent {
			return fromData, true
		}
	}
	return nil, false
}

// extractRecords pulls the record list for an individual report:
// student.attendanceRecords, then data, then top-level attendanceRecords,
// then the payload itself as an array.
func extractRecords(payload []byte) ([]previewRecord, bool) {
	var arr []previewRecord
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr, true
	}

	var env previewEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}

	if env.Student != nil && env.Student.AttendanceRecords != nil {
		return env.Student.AttendanceRecords, true
	}
	if env.Data != nil {
		var fromData []previewRecord
		if json.Unmarshal(env.Data, &fromData) == nil {
			return fromData, true
		}
	}
	if env.AttendanceRecords != nil {
		return env.AttendanceRecords, true
	}
	return nil, false
}

// lastMatching returns the last history entry whose date formats to the same
// calendar day as the requested date, or nil.
func lastMatching(history []previewRecord, day time.Time, loc *time.Location) *previewRecord {
	want := day.Format(DateLayout)
	var match *previewRecord
	for i := range history {
		rec := &history[i]
		if rec.Date.ok && rec.Date.t.In(loc).Format(DateLayout) == want {
			match = rec
		}
	}
	return match
}

// displayLabel routes every rendered status through the one shared classifier.
func displayLabel(raw string) string {
	return attendance.Classify(attendance.Status(raw)).Label
}

func (a *Assembler) fmtTime(t flexTime) string {
	if !t.ok {
		return "N/A"
	}
	return t.t.In(a.loc).Format("3:04:05 PM")
}

func (a *Assembler) fmtDate(t flexTime) string {
	if !t.ok {
		return "N/A"
	}
	return t.t.In(a.loc).Format("Jan 2, 2006")
}

// duration renders the time between entry and leave. A leave time earlier
// than the entry time is bad manual data; it renders as N/A instead of a
// negative span.
func duration(entry, leave flexTime) string {
	if !entry.ok || !leave.ok {
		return "N/A"
	}
	d := leave.t.Sub(entry.t)
	if d < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func countCell(n *int) string {
	if n == nil {
		return "0"
	}
	return fmt.Sprintf("%d", *n)
}

func rateCell(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *r)
}
