package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const ttsRequestTimeout = 10 * time.Second

// FileSpeaker synthesizes utterances to MP3 files under audioDir using the
// Google Translate TTS endpoint and returns the filename. The engine has a
// single voice, so the gender hint is ignored.
type FileSpeaker struct {
	audioDir   string
	httpClient *http.Client
}

func NewFileSpeaker(audioDir string) *FileSpeaker {
	return &FileSpeaker{
		audioDir:   audioDir,
		httpClient: &http.Client{Timeout: ttsRequestTimeout},
	}
}

func (s *FileSpeaker) Speak(ctx context.Context, text, voiceHint string) (string, error) {
	filename := fmt.Sprintf("utterance_%s.mp3", uuid.NewString())
	outputPath := filepath.Join(s.audioDir, filename)

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := "https://translate.google.com/translate_tts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return filename, nil
}
