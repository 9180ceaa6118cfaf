package services

import (
	"errors"
	"fmt"
	"strings"

	"speakcoach/models"
)

// gradeRubrics maps a grade label to the rubric paragraph embedded in the
// system prompt. Grades within a band share expectations but keep their own
// key so the lookup stays a plain map access.
var gradeRubrics = map[string]string{
	"K1": "Kindergarten level (K1): expect single words and very short phrases. Reward any intelligible English, clear effort, and willingness to speak. Pronunciation of simple vocabulary matters more than grammar.",
	"K2": "Kindergarten level (K2): expect short phrases and simple sentences. Reward intelligible pronunciation of common words and growing confidence. Grammar mistakes are expected and should barely affect the score.",
	"K3": "Kindergarten level (K3): expect simple full sentences about familiar topics. Reward clear pronunciation, basic vocabulary range, and sustained attempts to answer.",
	"P1": "Lower primary level (P1): expect simple sentences with basic connectives. Assess pronunciation of everyday vocabulary, simple sentence structure, and willingness to elaborate.",
	"P2": "Lower primary level (P2): expect several connected sentences. Assess pronunciation clarity, everyday vocabulary range, and basic fluency without long silences.",
	"P3": "Mid primary level (P3): expect short structured answers with reasons. Assess pronunciation, vocabulary variety, sentence-level grammar, and pacing.",
	"P4": "Mid primary level (P4): expect organised answers with supporting details. Assess pronunciation accuracy, vocabulary beyond the everyday, fluency, and confidence.",
	"P5": "Upper primary level (P5): expect developed answers with examples and opinions. Assess stress and intonation, topic vocabulary, fluency across sentences, and self-correction.",
	"P6": "Upper primary level (P6): expect well-organised answers approaching secondary readiness. Assess pronunciation precision, varied vocabulary, connected discourse, and confident delivery.",
	"S1": "Junior secondary level (S1): expect multi-sentence responses with clear structure. Assess pronunciation and intonation, topic-appropriate vocabulary, discourse markers, and fluency under time pressure.",
	"S2": "Junior secondary level (S2): expect extended responses with justification. Assess pronunciation subtleties, vocabulary precision, grammatical range, and sustained fluency.",
	"S3": "Junior secondary level (S3): expect extended, coherent argumentation. Assess near-accurate pronunciation, idiomatic vocabulary, complex structures, and confident pacing.",
	"S4": "Senior secondary level (S4): expect exam-style extended responses. Assess pronunciation accuracy including weak forms, academic vocabulary, cohesive devices, and fluency.",
	"S5": "Senior secondary level (S5): expect sophisticated extended responses. Assess natural rhythm and intonation, precise and varied vocabulary, complex grammar, and composure.",
	"S6": "Senior secondary level (S6): expect near exit-level performance. Assess native-like pronunciation features, nuanced vocabulary, full grammatical range, and assured, fluent delivery.",
}

const genericRubric = "General level: assess intelligible pronunciation, appropriate vocabulary for the apparent age of the speaker, fluency without excessive hesitation, and overall confidence. Be encouraging and constructive."

var ErrNoAnswers = errors.New("no recorded answers to evaluate")

// BuildEvaluationPrompts serialises a grade level and a list of recorded
// answers into the system and user prompts for a chat-completion request.
// It is a pure function of its inputs.
func BuildEvaluationPrompts(grade string, answers []models.RecordedAnswer) (string, string, error) {
	if len(answers) == 0 {
		return "", "", ErrNoAnswers
	}

	rubric, ok := gradeRubrics[grade]
	if !ok {
		rubric = genericRubric
	}

	var system strings.Builder
	system.WriteString("You are an experienced English speaking examiner for Hong Kong students.\n")
	system.WriteString(fmt.Sprintf("Grade level: %s.\n%s\n", grade, rubric))
	system.WriteString(`Score the candidate from the recorded-answer metadata below and reply in STRICT JSON with this shape:
{
  "overallScore": 0-100,
  "pronunciation": 0-100,
  "vocabulary": 0-100,
  "fluency": 0-100,
  "confidence": 0-100,
  "sectionScores": {"<section>": 0-100},
  "questionAnalyses": [{"questionId": "...", "score": 0-100, "feedback": "...", "issues": ["..."], "suggestions": ["..."]}],
  "strengths": ["..."],
  "improvementAreas": ["..."],
  "plan": {"weeklyFocus": "...", "shortTermGoals": ["..."], "longTermGoals": ["..."], "practiceActivities": ["..."]}
}
Provide ONLY the JSON output without any additional text.`)

	var user strings.Builder
	user.WriteString(fmt.Sprintf("The candidate answered %d question(s).\n\n", len(answers)))
	var totalLatency int64
	for i, a := range answers {
		totalLatency += a.ResponseLatencyMs
		user.WriteString(fmt.Sprintf("Question %d [%s]: %s\n", i+1, a.Section, a.Question))
		user.WriteString(fmt.Sprintf("Recording duration: %.1fs, response latency: %dms\n\n", a.Duration, a.ResponseLatencyMs))
	}
	user.WriteString(fmt.Sprintf("Average response latency: %dms\n", totalLatency/int64(len(answers))))

	return system.String(), user.String(), nil
}
