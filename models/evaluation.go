package models

// Evaluation sources
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// QuestionAnalysis scores a single recorded answer.
type QuestionAnalysis struct {
	QuestionID  string   `json:"questionId" bson:"questionId"`
	Score       int      `json:"score" bson:"score"`
	Feedback    string   `json:"feedback" bson:"feedback"`
	Issues      []string `json:"issues" bson:"issues"`
	Suggestions []string `json:"suggestions" bson:"suggestions"`
}

// LearningPlan is the personalized practice plan attached to a result.
type LearningPlan struct {
	WeeklyFocus        string   `json:"weeklyFocus" bson:"weeklyFocus"`
	ShortTermGoals     []string `json:"shortTermGoals" bson:"shortTermGoals"`
	LongTermGoals      []string `json:"longTermGoals" bson:"longTermGoals"`
	PracticeActivities []string `json:"practiceActivities" bson:"practiceActivities"`
}

// EvaluationResult is the structured score for one assessment session,
// produced either by the remote model or by the local fallback scorer.
// All numeric scores are kept within [0,100].
type EvaluationResult struct {
	OverallScore       int                `json:"overallScore" bson:"overallScore"`
	Pronunciation      int                `json:"pronunciation" bson:"pronunciation"`
	Vocabulary         int                `json:"vocabulary" bson:"vocabulary"`
	Fluency            int                `json:"fluency" bson:"fluency"`
	Confidence         int                `json:"confidence" bson:"confidence"`
	SectionScores      map[string]int     `json:"sectionScores" bson:"sectionScores"`
	QuestionAnalyses   []QuestionAnalysis `json:"questionAnalyses" bson:"questionAnalyses"`
	Strengths          []string           `json:"strengths" bson:"strengths"`
	ImprovementAreas   []string           `json:"improvementAreas" bson:"improvementAreas"`
	Plan               LearningPlan       `json:"plan" bson:"plan"`
	QuestionsAttempted int                `json:"questionsAttempted" bson:"questionsAttempted"`
	Source             string             `json:"source" bson:"source"` // "remote" or "fallback"
}
