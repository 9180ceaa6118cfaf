package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"speakcoach/models"
)

// fakeStore records saved history entries in memory.
type fakeStore struct {
	mu      sync.Mutex
	entries []models.DiscussionHistoryEntry
}

func (s *fakeStore) Save(ctx context.Context, entry models.DiscussionHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeStore) List(ctx context.Context, userID string) ([]models.DiscussionHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DiscussionHistoryEntry(nil), s.entries...), nil
}

func (s *fakeStore) Get(ctx context.Context, userID, id string) (models.DiscussionHistoryEntry, error) {
	return models.DiscussionHistoryEntry{}, errors.New("not implemented")
}

func (s *fakeStore) Delete(ctx context.Context, userID, id string) error { return nil }

func (s *fakeStore) Clear(ctx context.Context, userID string) error { return nil }

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// scriptedGenerator returns numbered canned responses, or a fixed error.
type scriptedGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *scriptedGenerator) Generate(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.calls++
	return fmt.Sprintf("Scripted response %d.", g.calls), nil
}

// gatedGenerator signals the start of every Generate call and blocks it
// until released.
type gatedGenerator struct {
	started chan struct{}
	release chan struct{}
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedGenerator) Generate(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return "Gated response.", nil
}

func testDiscussionService(gen TextGenerator, store HistoryStore, seed int64) *DiscussionService {
	return &DiscussionService{
		gen:         gen,
		speaker:     NullSpeaker{},
		store:       store,
		maxTokens:   300,
		temperature: 0.8,
		sleep:       func(ctx context.Context, d time.Duration) error { return nil },
		newRand:     func() *rand.Rand { return rand.New(rand.NewSource(seed)) },
		sessions:    map[string]*sessionRuntime{},
	}
}

func runToCompletion(t *testing.T, svc *DiscussionService, userID, id string) TurnResult {
	t.Helper()
	for i := 0; i < 10; i++ {
		result, err := svc.SubmitTurn(context.Background(), userID, id, fmt.Sprintf("My point number %d is that practice matters.", i+1))
		if err != nil {
			t.Fatalf("SubmitTurn failed on turn %d: %v", i+1, err)
		}
		if result.Score != nil {
			return result
		}
	}
	t.Fatalf("Session did not finish within 10 turns")
	return TurnResult{}
}

func TestDiscussionRunsToCompletion(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		store := &fakeStore{}
		svc := testDiscussionService(&scriptedGenerator{}, store, seed)

		session, err := svc.StartSession(context.Background(), "user1", "Should students wear uniforms?", "Amy")
		if err != nil {
			t.Fatalf("seed %d: StartSession failed: %v", seed, err)
		}
		if session.MaxTurns < 4 || session.MaxTurns > 6 {
			t.Errorf("seed %d: expected max turns between 4 and 6, got %d", seed, session.MaxTurns)
		}
		if session.Phase != models.PhaseDiscussion {
			t.Errorf("seed %d: expected phase %q after start, got %q", seed, models.PhaseDiscussion, session.Phase)
		}
		if len(session.Messages) != 1 {
			t.Fatalf("seed %d: expected 1 opening message, got %d", seed, len(session.Messages))
		}
		if session.Messages[0].Stance != models.StanceSupport {
			t.Errorf("seed %d: expected the supporter to open, got stance %q", seed, session.Messages[0].Stance)
		}

		result := runToCompletion(t, svc, "user1", session.ID)
		if result.TurnCount != session.MaxTurns {
			t.Errorf("seed %d: expected completion at turn %d, got %d", seed, session.MaxTurns, result.TurnCount)
		}
		if result.Phase != models.PhaseResults {
			t.Errorf("seed %d: expected phase %q, got %q", seed, models.PhaseResults, result.Phase)
		}
		if result.HistoryID == "" {
			t.Errorf("seed %d: expected a history ID on completion", seed)
		}
		if store.saveCount() != 1 {
			t.Errorf("seed %d: expected exactly one history save, got %d", seed, store.saveCount())
		}

		// A finished session accepts no further turns.
		if _, err := svc.SubmitTurn(context.Background(), "user1", session.ID, "One more thought."); !errors.Is(err, ErrSessionFinished) {
			t.Errorf("seed %d: expected ErrSessionFinished, got %v", seed, err)
		}
	}
}

func TestDiscussionEachTurnGetsAtLeastTwoResponses(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 42)
	session, err := svc.StartSession(context.Background(), "user1", "Is homework useful?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	result, err := svc.SubmitTurn(context.Background(), "user1", session.ID, "I think homework helps me remember lessons.")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if len(result.Messages) < 2 {
		t.Errorf("Expected at least 2 AI responses per turn, got %d", len(result.Messages))
	}
	stances := map[string]bool{}
	for _, m := range result.Messages {
		stances[m.Stance] = true
	}
	if !stances[models.StanceSupport] || !stances[models.StanceOppose] {
		t.Errorf("Expected both the supporter and the opposer to respond, got %v", stances)
	}
}

func TestDiscussionMediatorNeverSpeaksTwiceInARow(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, seed)
		session, err := svc.StartSession(context.Background(), "user1", "Should phones be allowed in class?", "Ben")
		if err != nil {
			t.Fatalf("seed %d: StartSession failed: %v", seed, err)
		}
		runToCompletion(t, svc, "user1", session.ID)

		final, err := svc.GetSession("user1", session.ID)
		if err != nil {
			t.Fatalf("seed %d: GetSession failed: %v", seed, err)
		}
		// Closing included: no speaker may ever follow themselves in the
		// full message log.
		mediator := final.ParticipantByStance(models.StanceMediator)
		for i := 1; i < len(final.Messages); i++ {
			if final.Messages[i].Speaker == final.Messages[i-1].Speaker {
				t.Errorf("seed %d: %s spoke twice in a row at message %d", seed, final.Messages[i].Speaker, i)
			}
		}
		if last := final.Messages[len(final.Messages)-1]; last.Speaker != mediator.Name && last.Stance != models.StanceSupport {
			t.Errorf("seed %d: expected the mediator or the supporter to close, got %s (%s)", seed, last.Speaker, last.Stance)
		}
	}
}

func TestDiscussionTurnGuard(t *testing.T) {
	gen := newGatedGenerator()
	svc := testDiscussionService(gen, &fakeStore{}, 7)

	// Let the opening generate immediately.
	go func() { gen.release <- struct{}{} }()
	session, err := svc.StartSession(context.Background(), "user1", "Are zoos good for animals?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	<-gen.started // opening call

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SubmitTurn(context.Background(), "user1", session.ID, "I went to a zoo last year.")
	}()

	<-gen.started // first persona call: the turn is now in flight
	if _, err := svc.SubmitTurn(context.Background(), "user1", session.ID, "Another thought."); !errors.Is(err, ErrTurnInProgress) {
		t.Errorf("Expected ErrTurnInProgress while a turn is in flight, got %v", err)
	}

	close(gen.release)
	<-done
}

func TestDiscussionEndSessionDiscardsInFlightResults(t *testing.T) {
	gen := newGatedGenerator()
	store := &fakeStore{}
	svc := testDiscussionService(gen, store, 7)

	go func() { gen.release <- struct{}{} }()
	session, err := svc.StartSession(context.Background(), "user1", "Is recycling worth the effort?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	<-gen.started // opening call

	type turnOutcome struct {
		result TurnResult
		err    error
	}
	outcome := make(chan turnOutcome, 1)
	go func() {
		result, err := svc.SubmitTurn(context.Background(), "user1", session.ID, "Recycling saves resources.")
		outcome <- turnOutcome{result, err}
	}()

	<-gen.started
	svc.EndSession("user1", session.ID)
	close(gen.release)

	got := <-outcome
	if !errors.Is(got.err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for an ended session, got %v", got.err)
	}
	if store.saveCount() != 0 {
		t.Errorf("Expected no history save for an ended session, got %d", store.saveCount())
	}
}

func TestDiscussionGenerationFailureUsesTemplatedFallbacks(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{err: errors.New("model offline")}, &fakeStore{}, 3)

	session, err := svc.StartSession(context.Background(), "user1", "Should school start later?", "Kim")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.Messages[0].Text == "" {
		t.Errorf("Expected a templated opening when generation fails")
	}

	result, err := svc.SubmitTurn(context.Background(), "user1", session.ID, "I am always tired in the morning.")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	for _, m := range result.Messages {
		if m.Text == "" {
			t.Errorf("Expected templated fallback text for %s, got empty", m.Speaker)
		}
	}
}

func TestDiscussionHistoryViewTransitions(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 11)
	session, err := svc.StartSession(context.Background(), "user1", "Do video games teach anything?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if err := svc.EnterHistoryView("user1", session.ID); !errors.Is(err, ErrInvalidPhaseMove) {
		t.Errorf("Expected ErrInvalidPhaseMove before results, got %v", err)
	}

	runToCompletion(t, svc, "user1", session.ID)

	if err := svc.EnterHistoryView("user1", session.ID); err != nil {
		t.Errorf("Expected history view entry from results, got %v", err)
	}
	if err := svc.EnterHistoryView("user1", session.ID); !errors.Is(err, ErrInvalidPhaseMove) {
		t.Errorf("Expected ErrInvalidPhaseMove when already in history view, got %v", err)
	}
	if err := svc.ExitHistoryView("user1", session.ID); err != nil {
		t.Errorf("Expected history view exit back to results, got %v", err)
	}
	if err := svc.ExitHistoryView("user1", session.ID); !errors.Is(err, ErrInvalidPhaseMove) {
		t.Errorf("Expected ErrInvalidPhaseMove when already in results, got %v", err)
	}
}

func TestDiscussionStartRequiresTopic(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 1)
	if _, err := svc.StartSession(context.Background(), "user1", "   ", ""); err == nil {
		t.Errorf("Expected an error for a blank topic")
	}
}

func TestDiscussionUnknownSession(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 1)
	if _, err := svc.SubmitTurn(context.Background(), "user1", "missing", "Hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.GetSession("user1", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestDiscussionSessionOwnership(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 5)
	session, err := svc.StartSession(context.Background(), "user1", "Should pets be allowed at school?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	// Another user's session is indistinguishable from a missing one.
	if _, err := svc.GetSession("user2", session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for another user's session, got %v", err)
	}
	if _, err := svc.SubmitTurn(context.Background(), "user2", session.ID, "Let me join in."); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound submitting to another user's session, got %v", err)
	}
	if err := svc.EnterHistoryView("user2", session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound moving another user's session, got %v", err)
	}

	// Ending someone else's session must not drop it.
	svc.EndSession("user2", session.ID)
	if _, err := svc.GetSession("user1", session.ID); err != nil {
		t.Errorf("Expected the owner to still reach the session, got %v", err)
	}

	svc.EndSession("user1", session.ID)
	if _, err := svc.GetSession("user1", session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected the session gone after the owner ended it, got %v", err)
	}
}

func TestDiscussionFinishedSessionEvicted(t *testing.T) {
	svc := testDiscussionService(&scriptedGenerator{}, &fakeStore{}, 9)
	svc.finishedTTL = time.Millisecond

	session, err := svc.StartSession(context.Background(), "user1", "Is breakfast the most important meal?", "")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	runToCompletion(t, svc, "user1", session.ID)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := svc.GetSession("user1", session.ID); errors.Is(err, ErrSessionNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected the finished session to be evicted after the grace period")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
