package routes

import (
	"speakcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupDiscussionRoutes sets up the group discussion routes.
func SetupDiscussionRoutes(router *gin.RouterGroup) {
	discussion := router.Group("/discussion")
	{
		discussion.POST("", controllers.StartDiscussion)
		discussion.GET("/:id", controllers.GetDiscussion)
		discussion.POST("/:id/turn", controllers.SubmitDiscussionTurn)
		discussion.POST("/:id/end", controllers.EndDiscussion)
		discussion.POST("/:id/history-view", controllers.EnterDiscussionHistoryView)
		discussion.DELETE("/:id/history-view", controllers.ExitDiscussionHistoryView)
	}
}
