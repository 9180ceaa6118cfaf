package models

import "time"

// Stances held by simulated discussion participants
const (
	StanceSupport  = "support"
	StanceOppose   = "oppose"
	StanceMediator = "mediator"
)

// Discussion session phases
const (
	PhaseIntro      = "intro"
	PhaseDiscussion = "discussion"
	PhaseResults    = "results"
	PhaseHistory    = "history"
)

// Participant is one simulated member of a group discussion.
type Participant struct {
	Name   string `json:"name" bson:"name"`
	Gender string `json:"gender" bson:"gender"` // "male" or "female", used as a voice hint
	Stance string `json:"stance" bson:"stance"`
}

// DiscussionMessage is a single utterance in the session log.
type DiscussionMessage struct {
	Speaker   string    `json:"speaker" bson:"speaker"` // participant name or "You"
	Stance    string    `json:"stance,omitempty" bson:"stance,omitempty"`
	Text      string    `json:"text" bson:"text"`
	AudioFile string    `json:"audioFile,omitempty" bson:"audioFile,omitempty"`
	IsUser    bool      `json:"isUser" bson:"isUser"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// DiscussionSession holds the state of one multi-turn group discussion.
// Messages are append-only while the phase is "discussion"; the turn count
// never exceeds MaxTurns, which is fixed at session start.
type DiscussionSession struct {
	ID           string              `json:"id" bson:"_id"`
	Topic        string              `json:"topic" bson:"topic"`
	UserName     string              `json:"userName,omitempty" bson:"userName,omitempty"`
	Participants []Participant       `json:"participants" bson:"participants"`
	Messages     []DiscussionMessage `json:"messages" bson:"messages"`
	TurnCount    int                 `json:"turnCount" bson:"turnCount"`
	MaxTurns     int                 `json:"maxTurns" bson:"maxTurns"`
	Phase        string              `json:"phase" bson:"phase"`
	StartedAt    time.Time           `json:"startedAt" bson:"startedAt"`
}

// ParticipantByStance returns the participant holding the given stance.
func (s *DiscussionSession) ParticipantByStance(stance string) Participant {
	for _, p := range s.Participants {
		if p.Stance == stance {
			return p
		}
	}
	return Participant{}
}
