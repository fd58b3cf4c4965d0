package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type selects one of the four report families.
type Type string

const (
	TypeDaily      Type = "daily"
	TypeWeekly     Type = "weekly"
	TypeMonthly    Type = "monthly"
	TypeIndividual Type = "individual"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// Validation failures for report queries. The leading code matches what the
// upstream server uses for the same conditions.
var (
	ErrUnknownType     = errors.New("unknown report type")
	ErrInvalidDate     = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrFutureDate      = errors.New("future_date: reports cannot be generated for future dates")
	ErrDateRange       = errors.New("date_range_invalid: start date must be before end date")
	ErrRangeTooLong    = errors.New("date_range_invalid: range cannot span more than 31 days")
	ErrStudentRequired = errors.New("a student is required for individual reports")
)

// Query defines one report request: a single date for daily reports, a date
// range otherwise, plus the student for individual reports.
type Query struct {
	Type      Type
	Date      time.Time
	StartDate time.Time
	EndDate   time.Time
	StudentID string
}

// ParseQuery builds and validates a Query from raw request parameters.
// now anchors the future-date checks.
func ParseQuery(typ, date, startDate, endDate, studentID string, now time.Time) (Query, error) {
	q := Query{Type: Type(typ), StudentID: studentID}
	switch q.Type {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeIndividual:
	default:
		return Query{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	var err error
	if q.Type == TypeDaily {
		if q.Date, err = parseDate(date); err != nil {
			return Query{}, err
		}
	} else {
		if q.StartDate, err = parseDate(startDate); err != nil {
			return Query{}, err
		}
		if q.EndDate, err = parseDate(endDate); err != nil {
			return Query{}, err
		}
	}

	if err := q.Validate(now); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Validate enforces the date invariants: nothing in the future, start before
// end, at most 31 days for weekly and monthly ranges, and a student selected
// for individual reports.
func (q Query) Validate(now time.Time) error {
	today := now.Truncate(24 * time.Hour)

	if q.Type == TypeDaily {
		if q.Date.After(today) {
			return ErrFutureDate
		}
		return nil
	}

	if q.StartDate.After(q.EndDate) {
		return ErrDateRange
	}
	if q.EndDate.After(today) {
		return ErrFutureDate
	}
	if q.Type == TypeWeekly || q.Type == TypeMonthly {
		if q.EndDate.Sub(q.StartDate) > 31*24*time.Hour {
			return ErrRangeTooLong
		}
	}
	if q.Type == TypeIndividual && q.StudentID == "" {
		return ErrStudentRequired
	}
	return nil
}

// Filename returns the deterministic download name for the generated
// workbook: {type}_attendance_report_{date-or-range}[_{studentName}].xlsx.
func (q Query) Filename(studentName string) string {
	var span string
	if q.Type == TypeDaily {
		span = q.Date.Format(DateLayout)
	} else {
		span = q.StartDate.Format(DateLayout) + "_to_" + q.EndDate.Format(DateLayout)
	}
	name := fmt.Sprintf("%s_attendance_report_%s", q.Type, span)
	if q.Type == TypeIndividual && studentName != "" {
		name += "_" + strings.Join(strings.Fields(studentName), "_")
	}
	return name + ".xlsx"
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
