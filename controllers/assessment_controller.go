package controllers

import (
	"errors"
	"net/http"

	"speakcoach/models"
	"speakcoach/services"

	"github.com/gin-gonic/gin"
)

var evaluationService *services.EvaluationService

// InitAssessmentController wires the evaluation service used by the
// assessment endpoints.
func InitAssessmentController(svc *services.EvaluationService) {
	evaluationService = svc
}

type EvaluateRequest struct {
	GradeLevel string                  `json:"gradeLevel" binding:"required"`
	Answers    []models.RecordedAnswer `json:"answers" binding:"required"`
}

// EvaluateAssessment scores a completed assessment session. Remote model
// failures degrade to the local scorer inside the service, so the only
// client-visible error here is a bad request.
func EvaluateAssessment(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	result, err := evaluationService.Evaluate(c.Request.Context(), req.GradeLevel, req.Answers)
	if err != nil {
		if errors.Is(err, services.ErrNoAnswers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one recorded answer is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate assessment: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
