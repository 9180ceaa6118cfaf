package controllers

import (
	"errors"
	"net/http"

	"speakcoach/services"

	"github.com/gin-gonic/gin"
)

var discussionService *services.DiscussionService

// InitDiscussionController wires the discussion service used by the
// discussion endpoints.
func InitDiscussionController(svc *services.DiscussionService) {
	discussionService = svc
}

type StartDiscussionRequest struct {
	Topic    string `json:"topic" binding:"required"`
	UserName string `json:"userName"`
}

type TurnRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

func StartDiscussion(c *gin.Context) {
	var req StartDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	session, err := discussionService.StartSession(c.Request.Context(), c.GetString("userId"), req.Topic, req.UserName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start discussion: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

func SubmitDiscussionTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	result, err := discussionService.SubmitTurn(c.Request.Context(), c.GetString("userId"), c.Param("id"), req.Transcript)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Discussion session not found"})
		case errors.Is(err, services.ErrTurnInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "A response sequence is already in flight"})
		case errors.Is(err, services.ErrSessionFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "Discussion already finished"})
		case errors.Is(err, services.ErrSessionTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Discussion message limit reached"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process turn: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func GetDiscussion(c *gin.Context) {
	session, err := discussionService.GetSession(c.GetString("userId"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Discussion session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func EndDiscussion(c *gin.Context) {
	discussionService.EndSession(c.GetString("userId"), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Discussion ended"})
}

// EnterDiscussionHistoryView moves a finished session into the history
// side view; ExitDiscussionHistoryView returns it to results.
func EnterDiscussionHistoryView(c *gin.Context) {
	if err := discussionService.EnterHistoryView(c.GetString("userId"), c.Param("id")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": "history"})
}

func ExitDiscussionHistoryView(c *gin.Context) {
	if err := discussionService.ExitHistoryView(c.GetString("userId"), c.Param("id")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": "results"})
}
