package attendance

// DisplayStatus is the UI-facing rendering of a raw status code. Derived at
// render time, never stored.
type DisplayStatus struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Classify maps a raw status code to its display label and badge color. Every
// surface that renders a status (scan result, recent table, report rows) goes
// through this one mapping.
func Classify(s Status) DisplayStatus {
	switch s {
	case StatusEntered:
		return DisplayStatus{Label: "Present", Color: "green"}
	case StatusLeft:
		return DisplayStatus{Label: "Left", Color: "blue"}
	case StatusLate:
		return DisplayStatus{Label: "Late", Color: "yellow"}
	case StatusAbsent:
		return DisplayStatus{Label: "Absent", Color: "red"}
	default:
		return DisplayStatus{Label: "Unknown", Color: "gray"}
	}
}
