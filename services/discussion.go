package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"speakcoach/models"
	"speakcoach/utils"
)

// HistoryStore persists finished discussion summaries, bounded to the most
// recent entries per user with FIFO eviction.
type HistoryStore interface {
	Save(ctx context.Context, entry models.DiscussionHistoryEntry) error
	List(ctx context.Context, userID string) ([]models.DiscussionHistoryEntry, error)
	Get(ctx context.Context, userID, id string) (models.DiscussionHistoryEntry, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) error
}

var (
	ErrSessionNotFound  = errors.New("discussion session not found")
	ErrTurnInProgress   = errors.New("a response sequence is already in flight")
	ErrSessionFinished  = errors.New("discussion session already finished")
	ErrSessionTooLong   = errors.New("discussion message limit reached")
	ErrInvalidPhaseMove = errors.New("invalid phase transition")
)

const (
	interResponsePause = 600 * time.Millisecond
	maxSessionMessages = 50
)

// TurnResult is what one completed user turn produced.
type TurnResult struct {
	Messages  []models.DiscussionMessage `json:"messages"`
	Phase     string                     `json:"phase"`
	TurnCount int                        `json:"turnCount"`
	MaxTurns  int                        `json:"maxTurns"`
	Score     *models.DiscussionScore    `json:"score,omitempty"`
	HistoryID string                     `json:"historyId,omitempty"`
}

type sessionRuntime struct {
	mu         sync.Mutex
	processing bool
	finalized  bool
	rng        *rand.Rand
	phrases    PhraseHistory
	userID     string
	session    *models.DiscussionSession
}

// DiscussionService drives multi-turn group discussions between one human
// and three simulated participants. One logical actor per session: a turn
// in flight blocks further submissions for that session only.
type DiscussionService struct {
	gen         TextGenerator
	speaker     Speaker
	store       HistoryStore
	maxTokens   int
	temperature float64
	finishedTTL time.Duration

	// Injected for deterministic tests.
	sleep   func(ctx context.Context, d time.Duration) error
	newRand func() *rand.Rand

	mu       sync.Mutex
	sessions map[string]*sessionRuntime
}

func NewDiscussionService(gen TextGenerator, speaker Speaker, store HistoryStore) *DiscussionService {
	return &DiscussionService{
		gen:         gen,
		speaker:     speaker,
		store:       store,
		maxTokens:   300,
		temperature: 0.8,
		finishedTTL: 30 * time.Minute,
		sleep:       sleepCtx,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		sessions: map[string]*sessionRuntime{},
	}
}

// StartSession creates a session and performs the intro -> discussion
// transition: participants and the turn budget are fixed, the start time
// recorded, and the supporter's opening appended as the first message.
func (s *DiscussionService) StartSession(ctx context.Context, userID, topic, userName string) (models.DiscussionSession, error) {
	if strings.TrimSpace(topic) == "" {
		return models.DiscussionSession{}, errors.New("topic is required")
	}

	rng := s.newRand()
	session := &models.DiscussionSession{
		ID:           uuid.NewString(),
		Topic:        topic,
		UserName:     userName,
		Participants: GenerateParticipants(rng),
		MaxTurns:     3 + rng.Intn(3) + 1, // 4..6, fixed for the session
		Phase:        models.PhaseIntro,
		StartedAt:    time.Now(),
	}

	rt := &sessionRuntime{
		rng:     rng,
		phrases: PhraseHistory{},
		userID:  userID,
		session: session,
	}

	supporter := session.ParticipantByStance(models.StanceSupport)
	opening, err := s.generateOpening(ctx, session)
	if err != nil {
		log.Printf("opening generation failed, using templated fallback: %v", err)
		opening = fallbackOpening(topic, userName, session.Participants)
	}
	audio := speakWithTimeout(ctx, s.speaker, opening, supporter.Gender)

	session.Messages = append(session.Messages, models.DiscussionMessage{
		Speaker:   supporter.Name,
		Stance:    supporter.Stance,
		Text:      opening,
		AudioFile: audio,
		Timestamp: time.Now(),
	})
	session.Phase = models.PhaseDiscussion

	s.mu.Lock()
	s.sessions[session.ID] = rt
	s.mu.Unlock()

	return *session, nil
}

// GetSession returns a snapshot of the session state.
func (s *DiscussionService) GetSession(userID, id string) (models.DiscussionSession, error) {
	rt, err := s.runtime(userID, id)
	if err != nil {
		return models.DiscussionSession{}, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return *rt.session, nil
}

// EndSession drops the session; results from any still-running generation
// are discarded by the liveness check in SubmitTurn.
func (s *DiscussionService) EndSession(userID, id string) {
	s.mu.Lock()
	if rt, ok := s.sessions[id]; ok && rt.userID == userID {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}

// EnterHistoryView moves a finished session to the history side-state.
func (s *DiscussionService) EnterHistoryView(userID, id string) error {
	return s.movePhase(userID, id, models.PhaseResults, models.PhaseHistory)
}

// ExitHistoryView returns from the history side-state to results.
func (s *DiscussionService) ExitHistoryView(userID, id string) error {
	return s.movePhase(userID, id, models.PhaseHistory, models.PhaseResults)
}

func (s *DiscussionService) movePhase(userID, id, from, to string) error {
	rt, err := s.runtime(userID, id)
	if err != nil {
		return err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.session.Phase != from {
		return ErrInvalidPhaseMove
	}
	rt.session.Phase = to
	return nil
}

// runtime resolves a session for its owner. A session belonging to another
// user is indistinguishable from a missing one.
func (s *DiscussionService) runtime(userID, id string) (*sessionRuntime, error) {
	s.mu.Lock()
	rt, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || rt.userID != userID {
		return nil, ErrSessionNotFound
	}
	return rt, nil
}

// SubmitTurn processes one completed user turn: it appends the transcript,
// runs the AI response sequence, and finalizes the session when the turn
// budget is reached. A second call while one is in flight returns
// ErrTurnInProgress without appending anything.
func (s *DiscussionService) SubmitTurn(ctx context.Context, userID, id, transcript string) (TurnResult, error) {
	rt, err := s.runtime(userID, id)
	if err != nil {
		return TurnResult{}, err
	}

	rt.mu.Lock()
	if rt.processing {
		rt.mu.Unlock()
		return TurnResult{}, ErrTurnInProgress
	}
	if rt.session.Phase != models.PhaseDiscussion {
		rt.mu.Unlock()
		return TurnResult{}, ErrSessionFinished
	}
	if len(rt.session.Messages) >= maxSessionMessages {
		rt.mu.Unlock()
		return TurnResult{}, ErrSessionTooLong
	}
	rt.processing = true

	userName := rt.session.UserName
	if userName == "" {
		userName = "You"
	}
	rt.session.Messages = append(rt.session.Messages, models.DiscussionMessage{
		Speaker:   userName,
		Text:      transcript,
		IsUser:    true,
		Timestamp: time.Now(),
	})
	rt.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		rt.processing = false
		rt.mu.Unlock()
	}()

	result := TurnResult{}

	// Coin flip decides whether the supporter or the opposer leads this
	// round, so neither stance is always primary.
	first := rt.session.ParticipantByStance(models.StanceSupport)
	second := rt.session.ParticipantByStance(models.StanceOppose)
	if rt.rng.Intn(2) == 0 {
		first, second = second, first
	}

	// Half of the rounds carry a direct question back to the user or to
	// the other AI participant.
	questionTarget := ""
	if rt.rng.Intn(2) == 0 {
		if rt.rng.Intn(2) == 0 {
			questionTarget = userName
		} else {
			questionTarget = second.Name
		}
	}

	firstText := s.generatePersonaResponse(ctx, rt, first, transcript, questionTarget)
	firstMsg := s.appendAIMessage(ctx, rt, first, firstText)
	if firstMsg == nil {
		return TurnResult{}, ErrSessionNotFound
	}
	result.Messages = append(result.Messages, *firstMsg)

	if err := s.sleep(ctx, interResponsePause); err != nil {
		return result, nil
	}

	// The second responder reacts to the user's turn and the first
	// response combined.
	combined := transcript + "\n" + first.Name + " said: " + firstText
	secondText := s.generatePersonaResponse(ctx, rt, second, combined, "")
	secondMsg := s.appendAIMessage(ctx, rt, second, secondText)
	if secondMsg == nil {
		return TurnResult{}, ErrSessionNotFound
	}
	result.Messages = append(result.Messages, *secondMsg)

	// Occasionally the mediator reframes the exchange, but never twice in
	// a row.
	mediator := rt.session.ParticipantByStance(models.StanceMediator)
	rt.mu.Lock()
	lastSpeaker := ""
	if n := len(rt.session.Messages); n > 0 {
		lastSpeaker = rt.session.Messages[n-1].Speaker
	}
	rt.mu.Unlock()
	if rt.rng.Intn(2) == 0 && lastSpeaker != mediator.Name {
		mediatorText := s.generatePersonaResponse(ctx, rt, mediator, combined+"\n"+second.Name+" said: "+secondText, "")
		if msg := s.appendAIMessage(ctx, rt, mediator, mediatorText); msg != nil {
			result.Messages = append(result.Messages, *msg)
		}
	}

	rt.mu.Lock()
	rt.session.TurnCount++
	finished := rt.session.TurnCount >= rt.session.MaxTurns && !rt.finalized
	result.TurnCount = rt.session.TurnCount
	result.MaxTurns = rt.session.MaxTurns
	rt.mu.Unlock()

	if finished {
		score, historyID := s.finalize(ctx, rt, &result)
		result.Score = &score
		result.HistoryID = historyID
	}

	rt.mu.Lock()
	result.Phase = rt.session.Phase
	rt.mu.Unlock()

	return result, nil
}

// appendAIMessage synthesizes speech for the utterance and appends it to
// the session log, unless the session was ended while generation ran.
func (s *DiscussionService) appendAIMessage(ctx context.Context, rt *sessionRuntime, p models.Participant, text string) *models.DiscussionMessage {
	// Liveness check: discard results for sessions the user navigated
	// away from.
	s.mu.Lock()
	current, ok := s.sessions[rt.session.ID]
	s.mu.Unlock()
	if !ok || current != rt {
		return nil
	}

	audio := speakWithTimeout(ctx, s.speaker, text, p.Gender)
	msg := models.DiscussionMessage{
		Speaker:   p.Name,
		Stance:    p.Stance,
		Text:      text,
		AudioFile: audio,
		Timestamp: time.Now(),
	}
	rt.mu.Lock()
	rt.session.Messages = append(rt.session.Messages, msg)
	rt.mu.Unlock()
	return &msg
}

// finalize appends the closing message, computes the score, persists the
// history entry exactly once, and moves the session to results.
func (s *DiscussionService) finalize(ctx context.Context, rt *sessionRuntime, result *TurnResult) (models.DiscussionScore, string) {
	rt.mu.Lock()
	rt.finalized = true
	closing := pickClosing(rt.rng, rt.phrases, rt.session.UserName)
	// The mediator wraps up, unless it just spoke: no participant may
	// produce two consecutive messages, the closing included.
	closer := rt.session.ParticipantByStance(models.StanceMediator)
	if n := len(rt.session.Messages); n > 0 && rt.session.Messages[n-1].Speaker == closer.Name {
		closer = rt.session.ParticipantByStance(models.StanceSupport)
	}
	rt.mu.Unlock()

	if msg := s.appendAIMessage(ctx, rt, closer, closing); msg != nil {
		result.Messages = append(result.Messages, *msg)
	}

	rt.mu.Lock()
	duration := int(time.Since(rt.session.StartedAt).Seconds())
	score := ScoreDiscussion(rt.session.Messages, duration, rt.session.TurnCount)
	entry := models.DiscussionHistoryEntry{
		ID:              utils.NewDiscussionID(),
		UserID:          rt.userID,
		Topic:           rt.session.Topic,
		Participants:    rt.session.Participants,
		Messages:        rt.session.Messages,
		Score:           score,
		TurnCount:       rt.session.TurnCount,
		DurationSeconds: duration,
		CreatedAt:       time.Now(),
	}
	rt.session.Phase = models.PhaseResults
	rt.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, entry); err != nil {
			log.Printf("failed to save discussion history: %v", err)
		}
	}

	// Finished sessions the client never ends explicitly are evicted
	// after a grace period, so the map does not grow for the life of
	// the process.
	if s.finishedTTL > 0 {
		sessionID := rt.session.ID
		time.AfterFunc(s.finishedTTL, func() {
			s.mu.Lock()
			if current, ok := s.sessions[sessionID]; ok && current == rt {
				delete(s.sessions, sessionID)
			}
			s.mu.Unlock()
		})
	}

	return score, entry.ID
}

// generateOpening asks the generator for a natural opening that introduces
// all three participants and the user.
func (s *DiscussionService) generateOpening(ctx context.Context, session *models.DiscussionSession) (string, error) {
	var names []string
	for _, p := range session.Participants {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Stance))
	}
	system := fmt.Sprintf(
		"You are %s, opening a friendly English group discussion for a student. Participants: %s. Topic: %q. Introduce everyone naturally in 2-3 sentences, then invite the student to share their view first. Plain text only.",
		session.Participants[0].Name, strings.Join(names, ", "), session.Topic)
	user := "Please open the discussion."
	if session.UserName != "" {
		user = fmt.Sprintf("Please open the discussion and greet the student, whose name is %s.", session.UserName)
	}

	return s.gen.Generate(ctx, []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, s.maxTokens, s.temperature)
}

// generatePersonaResponse generates one stance-conditioned utterance,
// substituting the deterministic fallback when generation fails.
func (s *DiscussionService) generatePersonaResponse(ctx context.Context, rt *sessionRuntime, p models.Participant, lastInput, questionTarget string) string {
	system := personaSystemPrompt(rt.session.Topic, p, questionTarget)
	messages := []ChatMessage{{Role: "system", Content: system}}

	rt.mu.Lock()
	for _, m := range rt.session.Messages {
		role := "assistant"
		if m.IsUser {
			role = "user"
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Speaker + ": " + m.Text})
	}
	rt.mu.Unlock()
	messages = append(messages, ChatMessage{Role: "user", Content: "Respond to this: " + lastInput})

	text, err := s.gen.Generate(ctx, messages, s.maxTokens, s.temperature)
	if err != nil {
		log.Printf("%s response generation failed, using templated fallback: %v", p.Stance, err)
		switch p.Stance {
		case models.StanceSupport:
			return fallbackSupportResponse(p.Name)
		case models.StanceOppose:
			return fallbackOpposeResponse(p.Name)
		default:
			return fallbackMediatorResponse(p.Name)
		}
	}
	return text
}

func personaSystemPrompt(topic string, p models.Participant, questionTarget string) string {
	var stanceInstruction string
	switch p.Stance {
	case models.StanceSupport:
		stanceInstruction = "You support the motion. Open by agreeing with or building on the speaker's last point, then add one idea of your own."
	case models.StanceOppose:
		stanceInstruction = "You oppose the motion. Open by respectfully disagreeing with the speaker's last point, then give one counter-argument."
	default:
		stanceInstruction = "You are the mediator. Synthesize or reframe what has been said, finding common ground between the two sides."
	}

	prompt := fmt.Sprintf(
		"You are %s in a spoken English group discussion with a student. Topic: %q. %s Keep it to 2-3 conversational sentences a student can follow. Plain text only.",
		p.Name, topic, stanceInstruction)
	if questionTarget != "" {
		prompt += fmt.Sprintf(" End by asking %s a direct question.", questionTarget)
	}
	return prompt
}
