package api

import (
	"github.com/Am-duojie/amdo-s/config"
	_ "github.com/Am-duojie/amdo-s/docs"
	adminRecycle "github.com/Am-duojie/amdo-s/internal/api/v1/admin/recycle"
	"github.com/Am-duojie/amdo-s/internal/api/v1/auth"
	"github.com/Am-duojie/amdo-s/internal/api/v1/common/upload"
	"github.com/Am-duojie/amdo-s/internal/api/v1/recycle"
	userRoutes "github.com/Am-duojie/amdo-s/internal/api/v1/user"
	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		// 回收流程：目录/估价公开，草稿与订单在组内自带登录校验
		recycle.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			upload.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminRecycle.RegisterRoutes(admin)
		}
	}

	return router, nil
}
