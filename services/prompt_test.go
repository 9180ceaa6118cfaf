package services

import (
	"errors"
	"strings"
	"testing"

	"speakcoach/models"
)

func TestBuildEvaluationPromptsEmptyAnswers(t *testing.T) {
	_, _, err := BuildEvaluationPrompts("P3", nil)
	if !errors.Is(err, ErrNoAnswers) {
		t.Errorf("Expected ErrNoAnswers, got %v", err)
	}
}

func TestBuildEvaluationPromptsKnownGrade(t *testing.T) {
	answers := []models.RecordedAnswer{
		{QuestionID: "q1", Section: "warmup", Question: "What is your favourite food?", Duration: 5.5, ResponseLatencyMs: 1500},
	}

	system, user, err := BuildEvaluationPrompts("K1", answers)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(system, "Kindergarten level (K1)") {
		t.Errorf("Expected K1 rubric in system prompt")
	}
	if !strings.Contains(system, "STRICT JSON") {
		t.Errorf("Expected strict JSON instruction in system prompt")
	}
	if !strings.Contains(user, "What is your favourite food?") {
		t.Errorf("Expected question text in user prompt")
	}
	if !strings.Contains(user, "response latency: 1500ms") {
		t.Errorf("Expected latency in user prompt, got: %s", user)
	}
}

func TestBuildEvaluationPromptsUnknownGradeUsesGenericRubric(t *testing.T) {
	answers := []models.RecordedAnswer{
		{QuestionID: "q1", Section: "s", Question: "Tell me about your weekend.", Duration: 8, ResponseLatencyMs: 2000},
	}

	system, _, err := BuildEvaluationPrompts("X9", answers)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(system, "General level") {
		t.Errorf("Expected generic rubric for unknown grade")
	}
}

func TestBuildEvaluationPromptsMeanLatency(t *testing.T) {
	answers := []models.RecordedAnswer{
		{QuestionID: "q1", Section: "s", Question: "a", Duration: 5, ResponseLatencyMs: 1000},
		{QuestionID: "q2", Section: "s", Question: "b", Duration: 5, ResponseLatencyMs: 3000},
	}

	_, user, err := BuildEvaluationPrompts("P5", answers)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(user, "Average response latency: 2000ms") {
		t.Errorf("Expected mean latency 2000ms in user prompt, got: %s", user)
	}
}
