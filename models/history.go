package models

import "time"

// DiscussionScore is computed deterministically from the message log,
// the elapsed duration and the turn count of a finished session.
type DiscussionScore struct {
	Overall             int      `json:"overall" bson:"overall"`
	ContentQuality      float64  `json:"contentQuality" bson:"contentQuality"`
	VocabularyRichness  int      `json:"vocabularyRichness" bson:"vocabularyRichness"`
	SpeakingTimeSeconds int      `json:"speakingTimeSeconds" bson:"speakingTimeSeconds"`
	TurnCount           int      `json:"turnCount" bson:"turnCount"`
	Feedback            []string `json:"feedback" bson:"feedback"`
}

// DiscussionHistoryEntry is the persisted summary of a finished session.
// The store keeps at most the 20 most recent entries per user, evicting
// the oldest first.
type DiscussionHistoryEntry struct {
	ID              string              `json:"id" bson:"_id"` // disc_<timestamp>_<random>
	UserID          string              `json:"userId" bson:"userId"`
	Topic           string              `json:"topic" bson:"topic"`
	Participants    []Participant       `json:"participants" bson:"participants"`
	Messages        []DiscussionMessage `json:"messages" bson:"messages"`
	Score           DiscussionScore     `json:"score" bson:"score"`
	TurnCount       int                 `json:"turnCount" bson:"turnCount"`
	DurationSeconds int                 `json:"durationSeconds" bson:"durationSeconds"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}
