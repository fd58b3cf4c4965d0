package attendance

import "strings"

// Stats summarizes a day's scans for the dashboard header cards.
type Stats struct {
	TotalCount   int `json:"totalCount"`
	PresentCount int `json:"presentCount"`
	LeftCount    int `json:"leftCount"`
	LateCount    int `json:"lateCount"`
	AbsentCount  int `json:"absentCount"`
}

// RecentStudent is one row of the recent-attendance table.
type RecentStudent struct {
	Event
	DisplayStatus DisplayStatus `json:"displayStatus"`
}

// RecentView is the payload of the recent-attendance endpoint.
type RecentView struct {
	Students []RecentStudent `json:"students"`
	Stats    Stats           `json:"stats"`
}

// BuildRecentView projects journal entries into the display model: index
// numbers uppercased, missing message status shown as pending, display status
// derived through Classify.
func BuildRecentView(events []Event) RecentView {
	view := RecentView{Students: make([]RecentStudent, 0, len(events))}
	for _, evt := range events {
		if evt.IndexNumber == "" {
			evt.IndexNumber = "N/A"
		} else {
			evt.IndexNumber = strings.ToUpper(evt.IndexNumber)
		}
		if evt.MessageStatus == "" {
			evt.MessageStatus = MessagePending
		}
		view.Students = append(view.Students, RecentStudent{Event: evt, DisplayStatus: Classify(evt.Status)})

		view.Stats.TotalCount++
		switch evt.Status {
		case StatusEntered:
			view.Stats.PresentCount++
		case StatusLeft:
			view.Stats.LeftCount++
		case StatusLate:
			view.Stats.LateCount++
		case StatusAbsent:
			view.Stats.AbsentCount++
		}
	}
	return view
}
