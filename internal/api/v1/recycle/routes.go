package recycle

import (
	"github.com/gin-gonic/gin"

	"github.com/Am-duojie/amdo-s/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	recycleGroup := r.Group("/recycle")
	{
		// 目录与估价不要求登录；估价在登录态下额外回写草稿
		recycleGroup.GET("/catalog", h.Catalog)
		recycleGroup.GET("/reference-price", h.ReferencePrice)
		recycleGroup.POST("/estimate", middleware.OptionalAuthMiddleware(), h.Estimate)

		authed := recycleGroup.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.GET("/questionnaire", h.Questionnaire)

			draftGroup := authed.Group("/draft")
			{
				draftGroup.GET("", h.GetDraft)
				draftGroup.DELETE("", h.ClearDraft)
				draftGroup.PATCH("/selection", h.PatchSelection)
				draftGroup.DELETE("/selection", h.ResetSelection)
				draftGroup.PUT("/answers", h.PutAnswer)
				draftGroup.PUT("/step", h.SetStep)
				draftGroup.PUT("/storage", h.SetStorage)
				draftGroup.PUT("/condition", h.SetCondition)
				draftGroup.PUT("/config", h.SetConfig)
			}

			orderGroup := authed.Group("/orders")
			{
				orderGroup.GET("", h.ListOrders)
				orderGroup.POST("", h.CreateOrder)
				orderGroup.GET("/:id", h.GetOrder)
				orderGroup.POST("/:id/ship", h.Ship)
				orderGroup.POST("/:id/confirm-price", h.ConfirmPrice)
				orderGroup.POST("/:id/dispute", h.Dispute)
				orderGroup.POST("/:id/cancel", h.Cancel)
			}
		}
	}
}
