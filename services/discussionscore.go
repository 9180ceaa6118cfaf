package services

import (
	"math"
	"regexp"
	"strings"

	"speakcoach/models"
)

// Textual indicators counted toward content quality. Matched against the
// lowercased combined user text.
var (
	exampleMarkers    = regexp.MustCompile(`for example|for instance|such as|like when`)
	reasonMarkers     = regexp.MustCompile(`because|since|therefore|as a result`)
	opinionMarkers    = regexp.MustCompile(`i think|i believe|in my opinion|i feel`)
	agreementMarkers  = regexp.MustCompile(`i agree|that's true|good point|you're right`)
	disagreeMarkers   = regexp.MustCompile(`i disagree|however|on the other hand|i'm not sure about`)
	conclusionMarkers = regexp.MustCompile(`in conclusion|to sum up|overall|finally`)
)

const contentIndicatorCount = 7

func wordsLongerThan3(words []string) []string {
	var out []string
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))
		if len(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

// ScoreDiscussion computes the discussion score from the message log, the
// elapsed session duration and the turn count. It is a pure function of
// those three inputs; recomputing on unchanged inputs yields the same
// result.
func ScoreDiscussion(messages []models.DiscussionMessage, durationSeconds int, turnCount int) models.DiscussionScore {
	var userParts []string
	for _, m := range messages {
		if m.IsUser {
			userParts = append(userParts, m.Text)
		}
	}
	combined := strings.Join(userParts, " ")
	lower := strings.ToLower(combined)
	words := strings.Fields(combined)

	// Speaking time estimated at 150 words per minute.
	speakingTime := int(math.Round(float64(len(words)) / 150 * 60))

	longWords := wordsLongerThan3(words)
	vocabularyRichness := 0
	if len(longWords) > 0 {
		unique := map[string]bool{}
		for _, w := range longWords {
			unique[w] = true
		}
		vocabularyRichness = int(math.Round(float64(len(unique)) / float64(len(longWords)) * 150))
		if vocabularyRichness > 100 {
			vocabularyRichness = 100
		}
	}

	hasExamples := exampleMarkers.MatchString(lower)
	hasReasons := reasonMarkers.MatchString(lower)
	hasOpinion := opinionMarkers.MatchString(lower)
	hasAgreement := agreementMarkers.MatchString(lower)
	hasDisagreement := disagreeMarkers.MatchString(lower)
	hasConclusion := conclusionMarkers.MatchString(lower)
	isSubstantial := len(words) > 50

	matched := 0
	for _, hit := range []bool{hasExamples, hasReasons, hasOpinion, hasAgreement, hasDisagreement, hasConclusion, isSubstantial} {
		if hit {
			matched++
		}
	}
	contentQuality := float64(matched) / contentIndicatorCount * 100

	timeBonus := 0
	if speakingTime > 30 {
		timeBonus = 10
	} else if speakingTime > 15 {
		timeBonus = 5
	}

	turnComponent := float64(turnCount * 15)
	if turnComponent > 45 {
		turnComponent = 45
	}

	overall := int(math.Round(contentQuality*0.4 + float64(vocabularyRichness)*0.3 + turnComponent + float64(timeBonus)))
	if overall > 100 {
		overall = 100
	}

	// Feedback sentences keyed to fixed thresholds, in fixed order.
	var feedback []string
	if contentQuality >= 60 {
		feedback = append(feedback, "You developed your ideas well with reasons and examples.")
	} else if contentQuality >= 30 {
		feedback = append(feedback, "Good ideas! Try to support them with more reasons and examples.")
	} else {
		feedback = append(feedback, "Try to expand your answers: give a reason and an example for each idea.")
	}
	if vocabularyRichness >= 70 {
		feedback = append(feedback, "You used a nice variety of vocabulary.")
	} else {
		feedback = append(feedback, "Try using a wider range of words instead of repeating the same ones.")
	}
	if turnCount >= 5 {
		feedback = append(feedback, "You stayed engaged throughout the whole discussion.")
	} else {
		feedback = append(feedback, "Joining in for more turns will help you practise sustained conversation.")
	}
	if hasExamples {
		feedback = append(feedback, "Great use of examples to illustrate your points.")
	} else {
		feedback = append(feedback, "Adding examples like \"for example...\" makes arguments more convincing.")
	}
	if hasOpinion {
		feedback = append(feedback, "You expressed your own opinions clearly.")
	}

	return models.DiscussionScore{
		Overall:             overall,
		ContentQuality:      contentQuality,
		VocabularyRichness:  vocabularyRichness,
		SpeakingTimeSeconds: speakingTime,
		TurnCount:           turnCount,
		Feedback:            feedback,
	}
}
