package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// Speaker synthesizes one utterance. The voice hint is the speaking
// participant's gender; implementations may ignore it. The returned handle
// identifies the produced audio (a filename), or is empty when the
// implementation produces none.
type Speaker interface {
	Speak(ctx context.Context, text, voiceHint string) (string, error)
}

// Recognizer captures speech into a running transcript. The server-side
// implementation is fed over the WebSocket channel; Stop returns whatever
// has accumulated.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() (string, error)
}

// AudioCapture records raw audio for playback only, separate from
// recognition.
type AudioCapture interface {
	Start(ctx context.Context) error
	Stop() (string, error)
}

// NullSpeaker is the capability-unavailable degradation: it produces no
// audio and returns immediately, leaving pacing to the estimated-duration
// timer on the client side.
type NullSpeaker struct{}

func (NullSpeaker) Speak(ctx context.Context, text, voiceHint string) (string, error) {
	return "", ctx.Err()
}

// EstimatedSpeechDuration approximates how long an utterance takes to
// speak, used for pacing when no real playback signal exists.
func EstimatedSpeechDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * 400 * time.Millisecond
	if d < time.Second {
		d = time.Second
	}
	return d
}

// speakWithTimeout runs the speaker under a ceiling proportional to the
// text length, so a hung engine never stalls the turn sequence. Failures
// are logged and swallowed; speech is never fatal to a session.
func speakWithTimeout(ctx context.Context, speaker Speaker, text, voiceHint string) string {
	if speaker == nil {
		return ""
	}
	ceiling := 2*EstimatedSpeechDuration(text) + 3*time.Second
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	audio, err := speaker.Speak(ctx, text, voiceHint)
	if err != nil {
		log.Printf("speech synthesis failed (continuing): %v", err)
		return ""
	}
	return audio
}

// TranscriptBuffer accumulates interim recognition results into a running
// transcript. Interim text is replaced until committed; committed text is
// append-only.
type TranscriptBuffer struct {
	mu        sync.Mutex
	committed strings.Builder
	interim   string
}

// SetInterim replaces the current interim fragment.
func (b *TranscriptBuffer) SetInterim(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interim = text
}

// Commit promotes the given final fragment onto the transcript and clears
// the interim fragment.
func (b *TranscriptBuffer) Commit(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text != "" {
		if b.committed.Len() > 0 {
			b.committed.WriteString(" ")
		}
		b.committed.WriteString(text)
	}
	b.interim = ""
}

// Text returns the committed transcript plus any pending interim fragment.
func (b *TranscriptBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.interim == "" {
		return b.committed.String()
	}
	if b.committed.Len() == 0 {
		return b.interim
	}
	return b.committed.String() + " " + b.interim
}

// Reset clears the buffer for the next turn.
func (b *TranscriptBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed.Reset()
	b.interim = ""
}
