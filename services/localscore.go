package services

import (
	"fmt"

	"speakcoach/models"
)

func clampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LocalScore produces an approximate evaluation from timing signals alone,
// with no network dependency. It is fully deterministic so the fallback
// path can be tested exactly.
func LocalScore(grade string, answers []models.RecordedAnswer) models.EvaluationResult {
	var totalDuration float64
	var totalLatency int64
	for _, a := range answers {
		totalDuration += a.Duration
		totalLatency += a.ResponseLatencyMs
	}

	var meanDuration float64
	var meanLatency int64
	if len(answers) > 0 {
		meanDuration = totalDuration / float64(len(answers))
		meanLatency = totalLatency / int64(len(answers))
	}

	overall := 50
	if meanDuration >= 5 {
		overall += 10
	}
	if meanDuration >= 10 {
		overall += 10
	}
	if meanLatency <= 3000 {
		overall += 10
	} else if meanLatency > 5000 {
		overall -= 10
	}
	overall += 2 * len(answers)
	overall = clampScore(overall, 30, 85)

	confidence := overall + 5
	if meanLatency > 3000 {
		confidence = overall - 10
	}

	result := models.EvaluationResult{
		OverallScore:       overall,
		Pronunciation:      clampScore(overall-5, 0, 100),
		Vocabulary:         clampScore(overall+2, 0, 100),
		Fluency:            clampScore(overall-3, 0, 100),
		Confidence:         clampScore(confidence, 0, 100),
		SectionScores:      map[string]int{},
		QuestionsAttempted: len(answers),
		Strengths: []string{
			"Completed the assessment and attempted every question",
			"Responded to spoken prompts without giving up",
		},
		ImprovementAreas: []string{
			"Practise answering promptly after hearing the question",
			"Extend each answer with one more detail or reason",
		},
		Plan: models.LearningPlan{
			WeeklyFocus: "Speak English aloud for a few minutes every day",
			ShortTermGoals: []string{
				"Answer common questions in full sentences",
				"Reduce pauses before starting to speak",
			},
			LongTermGoals: []string{
				"Hold a short conversation on a familiar topic",
				"Build confidence speaking in front of others",
			},
			PracticeActivities: []string{
				"Read a short passage aloud and record it",
				"Describe a picture for thirty seconds without stopping",
			},
		},
		Source: models.SourceFallback,
	}

	for _, a := range answers {
		result.SectionScores[a.Section] = overall
		result.QuestionAnalyses = append(result.QuestionAnalyses, models.QuestionAnalysis{
			QuestionID: a.QuestionID,
			Score:      overall,
			Feedback:   fmt.Sprintf("You spoke for %.1f seconds. Keep practising to give fuller answers.", a.Duration),
			Issues:     []string{},
			Suggestions: []string{
				"Try to answer a little faster next time",
				"Add an example to support your answer",
			},
		})
	}

	return result
}
