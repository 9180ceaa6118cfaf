package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"speakcoach/config"
	"speakcoach/models"
)

// EvaluationService obtains an evaluation for a grade and answer list,
// preferring the remote model candidates in priority order and degrading
// to the local scorer when every candidate is exhausted.
type EvaluationService struct {
	client    *ChatClient
	models    []string
	maxTokens int
	policy    retryPolicy
}

func NewEvaluationService(cfg *config.Config) *EvaluationService {
	maxTokens := cfg.AI.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	return &EvaluationService{
		client:    NewChatClient(cfg.AI.ApiKey, cfg.AI.EndpointURL),
		models:    cfg.AI.Models,
		maxTokens: maxTokens,
		policy:    defaultRetryPolicy(),
	}
}

// Evaluate scores the recorded answers. Remote failures are logged and
// absorbed; the only error surfaced to the caller is the contract
// violation of an empty answer list.
func (s *EvaluationService) Evaluate(ctx context.Context, grade string, answers []models.RecordedAnswer) (models.EvaluationResult, error) {
	system, user, err := BuildEvaluationPrompts(grade, answers)
	if err != nil {
		return models.EvaluationResult{}, err
	}

	messages := []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	for _, model := range s.models {
		var result models.EvaluationResult
		label := fmt.Sprintf("evaluate[%s]", model)

		err := s.policy.run(ctx, label, func() error {
			content, err := s.client.Chat(ctx, model, messages, s.maxTokens, true)
			if err != nil {
				return err
			}
			parsed, err := parseEvaluationContent(content)
			if err != nil {
				return err
			}
			result = parsed
			return nil
		})
		if err == nil {
			result.QuestionsAttempted = len(answers)
			result.Source = models.SourceRemote
			log.Printf("evaluation succeeded with model %s", model)
			return result, nil
		}
		log.Printf("model %s exhausted: %v", model, err)
	}

	log.Printf("all %d evaluation models exhausted, using local scorer", len(s.models))
	return LocalScore(grade, answers), nil
}

// parseEvaluationContent decodes the model's JSON answer. Missing fields
// default to empty values and every numeric score is clamped to [0,100] so
// a partially-conformant response never reaches the caller malformed.
func parseEvaluationContent(content string) (models.EvaluationResult, error) {
	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(cleanModelOutput(content)), &result); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("malformed evaluation JSON: %w", err)
	}

	result.OverallScore = clampScore(result.OverallScore, 0, 100)
	result.Pronunciation = clampScore(result.Pronunciation, 0, 100)
	result.Vocabulary = clampScore(result.Vocabulary, 0, 100)
	result.Fluency = clampScore(result.Fluency, 0, 100)
	result.Confidence = clampScore(result.Confidence, 0, 100)

	if result.SectionScores == nil {
		result.SectionScores = map[string]int{}
	}
	for k, v := range result.SectionScores {
		result.SectionScores[k] = clampScore(v, 0, 100)
	}
	for i := range result.QuestionAnalyses {
		qa := &result.QuestionAnalyses[i]
		qa.Score = clampScore(qa.Score, 0, 100)
		if qa.Issues == nil {
			qa.Issues = []string{}
		}
		if qa.Suggestions == nil {
			qa.Suggestions = []string{}
		}
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.ImprovementAreas == nil {
		result.ImprovementAreas = []string{}
	}
	if result.Plan.ShortTermGoals == nil {
		result.Plan.ShortTermGoals = []string{}
	}
	if result.Plan.LongTermGoals == nil {
		result.Plan.LongTermGoals = []string{}
	}
	if result.Plan.PracticeActivities == nil {
		result.Plan.PracticeActivities = []string{}
	}

	return result, nil
}
