package routes

import (
	"speakcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupHistoryRoutes sets up the discussion history routes.
func SetupHistoryRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	{
		history.GET("/discussions", controllers.ListDiscussionHistory)
		history.GET("/discussions/:id", controllers.GetDiscussionHistoryEntry)
		history.DELETE("/discussions/:id", controllers.DeleteDiscussionHistoryEntry)
		history.DELETE("/discussions", controllers.ClearDiscussionHistory)
	}
}
