package lead

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers public lead routes. intakeGuards run before
// the submit handler reads the body.
func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler, intakeGuards ...gin.HandlerFunc) {
	leads := r.Group("/leads")
	{
		leads.POST("", append(intakeGuards, handler.SubmitLead)...)
		leads.POST("/qualify", handler.QualifyAnswers)
		leads.GET("/:id", handler.GetLead)
		leads.GET("/:id/summary.html", handler.GetLeadSummaryHTML)
	}
}

// RegisterAdminRoutes registers admin lead routes
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	leads := r.Group("/leads")
	{
		leads.GET("", handler.ListLeads)
		leads.GET("/:id", handler.GetLeadAdmin)
	}
}
