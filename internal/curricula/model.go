package curricula

import "time"

// Record status values. A record exists per attempt, so there is no
// in-flight status: every persisted record is already terminal.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// AnalysisRecord is the persisted audit entry for one analysis request.
type AnalysisRecord struct {
	RequestID      string
	UserID         string
	Timestamp      time.Time
	Query          string // empty means per-file summary mode
	FilesCount     int
	FileNames      []string
	Result         AnalysisResult
	ProcessingTime float64 // wall-clock seconds for the whole request
	Status         string
}

// RecordView is the JSON shape of a record as returned by the read
// endpoints. Timestamps travel as fractional unix seconds.
type RecordView struct {
	RequestID      string         `json:"request_id"`
	UserID         string         `json:"user_id"`
	Timestamp      float64        `json:"timestamp"`
	Query          *string        `json:"query"`
	FilesCount     int            `json:"files_count"`
	FileNames      []string       `json:"file_names"`
	Result         AnalysisResult `json:"result"`
	ProcessingTime float64        `json:"processing_time_seconds"`
	Status         string         `json:"status"`
}

// View converts the record to its wire representation.
func (r AnalysisRecord) View() RecordView {
	view := RecordView{
		RequestID:      r.RequestID,
		UserID:         r.UserID,
		Timestamp:      unixSeconds(r.Timestamp),
		FilesCount:     r.FilesCount,
		FileNames:      r.FileNames,
		Result:         r.Result,
		ProcessingTime: r.ProcessingTime,
		Status:         r.Status,
	}
	if r.Query != "" {
		q := r.Query
		view.Query = &q
	}
	if view.FileNames == nil {
		view.FileNames = []string{}
	}
	return view
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}
