package services

import (
	"math"
	"reflect"
	"testing"

	"speakcoach/models"
)

func TestScoreDiscussionContentIndicators(t *testing.T) {
	messages := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: "I think technology helps us learn because we can find information quickly. For example, I use apps to practise English."},
	}

	score := ScoreDiscussion(messages, 20, 1)

	// Opinion, reason and example markers present: 3 of 7 indicators.
	want := 3.0 / 7 * 100
	if math.Abs(score.ContentQuality-want) > 0.01 {
		t.Errorf("Expected content quality %.2f, got %.2f", want, score.ContentQuality)
	}
	if score.VocabularyRichness != 100 {
		t.Errorf("Expected vocabulary richness 100, got %d", score.VocabularyRichness)
	}
	if score.Overall != 62 {
		t.Errorf("Expected overall 62, got %d", score.Overall)
	}
	if len(score.Feedback) != 5 {
		t.Errorf("Expected 5 feedback sentences, got %d: %v", len(score.Feedback), score.Feedback)
	}
}

func TestScoreDiscussionIdempotent(t *testing.T) {
	messages := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: "I agree with you because school uniforms make everyone equal."},
		{Speaker: "Sophia", Text: "That's an interesting perspective on uniforms."},
		{Speaker: "You", IsUser: true, Text: "However, in my opinion students should still choose on Fridays."},
	}

	first := ScoreDiscussion(messages, 45, 2)
	second := ScoreDiscussion(messages, 45, 2)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical scores for identical inputs, got %+v and %+v", first, second)
	}
}

func TestScoreDiscussionIgnoresAIMessages(t *testing.T) {
	userOnly := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: "Dogs are fun."},
	}
	withAI := []models.DiscussionMessage{
		{Speaker: "Marcus", Text: "I think pets teach responsibility because children must feed them. For example, my neighbour walks his dog daily."},
		{Speaker: "You", IsUser: true, Text: "Dogs are fun."},
	}

	if !reflect.DeepEqual(ScoreDiscussion(userOnly, 10, 1), ScoreDiscussion(withAI, 10, 1)) {
		t.Errorf("Expected AI messages to be excluded from scoring")
	}
}

func TestScoreDiscussionShortWordsNoRichness(t *testing.T) {
	messages := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: "I am so big. It is fun."},
	}

	score := ScoreDiscussion(messages, 10, 1)
	if score.VocabularyRichness != 0 {
		t.Errorf("Expected vocabulary richness 0 for short words only, got %d", score.VocabularyRichness)
	}
}

func TestScoreDiscussionTurnComponentCapped(t *testing.T) {
	messages := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: "Yes."},
	}

	five := ScoreDiscussion(messages, 5, 5)
	ten := ScoreDiscussion(messages, 5, 10)

	if five.Overall != ten.Overall {
		t.Errorf("Expected turn component capped at 45, got overall %d vs %d", five.Overall, ten.Overall)
	}
}

func TestScoreDiscussionOverallNeverExceeds100(t *testing.T) {
	text := "I think this is wonderful because education matters enormously. For example, students flourish magnificently. However, critics disagree. I agree partially. In conclusion, learning transforms lives completely. " +
		"Furthermore scholarship brings opportunity prosperity knowledge wisdom curiosity creativity imagination dedication perseverance motivation inspiration aspiration determination collaboration communication understanding empathy"
	messages := []models.DiscussionMessage{
		{Speaker: "You", IsUser: true, Text: text},
		{Speaker: "You", IsUser: true, Text: text},
		{Speaker: "You", IsUser: true, Text: text},
	}

	score := ScoreDiscussion(messages, 300, 6)
	if score.Overall > 100 {
		t.Errorf("Expected overall capped at 100, got %d", score.Overall)
	}
}
