package models

// RecordedAnswer is one user response to one assessment question. It is
// created when a recording completes and never mutated afterwards.
type RecordedAnswer struct {
	QuestionID        string  `json:"questionId" bson:"questionId"`
	Section           string  `json:"section" bson:"section"`
	Question          string  `json:"question" bson:"question"`
	AudioID           string  `json:"audioId,omitempty" bson:"audioId,omitempty"`
	Duration          float64 `json:"duration" bson:"duration"`                   // capture length in seconds
	ResponseLatencyMs int64   `json:"responseLatencyMs" bson:"responseLatencyMs"` // question finished -> recording started
}
