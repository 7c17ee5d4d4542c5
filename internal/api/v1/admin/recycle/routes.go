package recycle

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	templateGroup := r.Group("/recycle/templates")
	{
		templateGroup.GET("", h.ListTemplates)
		templateGroup.POST("", h.CreateTemplate)
		templateGroup.PUT("/:id", h.UpdateTemplate)
		templateGroup.DELETE("/:id", h.DeleteTemplate)
	}

	orderGroup := r.Group("/recycle/orders")
	{
		orderGroup.GET("", h.ListOrders)
		orderGroup.GET("/:id", h.GetOrder)
		orderGroup.POST("/:id/receive", h.ReceiveOrder)
		orderGroup.POST("/:id/inspect", h.InspectOrder)
		orderGroup.POST("/:id/payout", h.PayoutOrder)
		orderGroup.POST("/:id/cancel", h.CancelOrder)
	}
}
