package stats

// Summary is the read-only aggregate view backing the admin dashboard.
// Counts always match the underlying registration rows; nothing here is
// persisted independently.
type Summary struct {
	Total        int
	ByStatus     map[string]int
	ByAttendance map[string]int
	ByPayment    map[string]int
	ByLevel      map[string]int
	ByPosition   map[string]int
}
