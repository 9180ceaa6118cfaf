package controllers

import (
	"net/http"

	"speakcoach/services"

	"github.com/gin-gonic/gin"
)

var historyStore services.HistoryStore

// InitHistoryController wires the history store used by the history
// endpoints.
func InitHistoryController(store services.HistoryStore) {
	historyStore = store
}

func ListDiscussionHistory(c *gin.Context) {
	entries, err := historyStore.List(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func GetDiscussionHistoryEntry(c *gin.Context) {
	entry, err := historyStore.Get(c.Request.Context(), c.GetString("userId"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func DeleteDiscussionHistoryEntry(c *gin.Context) {
	if err := historyStore.Delete(c.Request.Context(), c.GetString("userId"), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History entry deleted"})
}

func ClearDiscussionHistory(c *gin.Context) {
	if err := historyStore.Clear(c.Request.Context(), c.GetString("userId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History cleared"})
}
