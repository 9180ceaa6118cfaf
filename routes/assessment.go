package routes

import (
	"speakcoach/controllers"

	"github.com/gin-gonic/gin"
)

// SetupAssessmentRoutes sets up the speaking assessment routes.
func SetupAssessmentRoutes(router *gin.RouterGroup) {
	assessment := router.Group("/assessment")
	{
		assessment.POST("/evaluate", controllers.EvaluateAssessment)
	}
}
