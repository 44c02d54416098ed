package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/app"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/api/middleware"
	v1 "github.com/hugn2k4/CNPMM-Resturant-Admin-BE/api/v1"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao/mysql"
	rdb "github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao/redis"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/mq"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
)

func main() {
	// 加载配置与日志
	cfg := app.BootstrapApp()

	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// 初始化存储
	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("MySQL初始化失败", "err", err)
	}
	redisClient, err := rdb.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("Redis初始化失败", "err", err)
	}

	// 初始化MQ生产者池（不可用时降级为不发事件）
	var mqPool *mq.Pool
	mqPool, err = mq.Init(&cfg.MQ)
	if err != nil {
		logger.Warn("MQ初始化失败，事件发布已禁用", "err", err)
		mqPool = nil
	} else {
		defer mqPool.Close()
		if err := mqPool.EnsureBaseTopology(); err != nil {
			logger.Warn("MQ交换机声明失败", "err", err)
		}
	}

	// DAO
	orderDao := dao.NewOrderDao(db)
	userDao := dao.NewUserDao(db)
	productDao := dao.NewProductDao(db)
	categoryDao := dao.NewCategoryDao(db)
	notificationDao := dao.NewNotificationDao(db)
	messageDao := dao.NewMessageDao(db)
	otpDao := dao.NewOtpDao(redisClient)

	// Service
	var publisher mq.Publisher
	if mqPool != nil {
		publisher = mqPool
	}
	orderService := service.NewOrderService(orderDao, publisher)
	authService := service.NewAuthService(userDao, otpDao, publisher, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	customerService := service.NewCustomerService(userDao)
	productService := service.NewProductService(productDao, categoryDao)
	categoryService := service.NewCategoryService(categoryDao)
	notificationService := service.NewNotificationService(notificationDao, userDao)
	chatService := service.NewChatService(messageDao)

	r := gin.Default()
	r.Use(middleware.GlobalRateLimit(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Restaurant admin backend is running",
		})
	})

	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	authHandler := v1.NewAuthHandler(authService)
	orderHandler := v1.NewOrderHandler(orderService)
	customerHandler := v1.NewCustomerHandler(customerService)
	productHandler := v1.NewProductHandler(productService)
	categoryHandler := v1.NewCategoryHandler(categoryService)
	notificationHandler := v1.NewNotificationHandler(notificationService)
	chatHandler := v1.NewChatHandler(chatService)

	api := r.Group("/api")
	{
		// 认证路由（免token，单独限流）
		authGroup := api.Group("")
		authGroup.Use(middleware.AuthRateLimit(cfg))
		{
			authHandler.RegisterRoutes(authGroup)
		}

		// 登录后可访问
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(jwtUtil))
		{
			notificationHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
		}

		// 管理端路由（需要管理员角色）
		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware(jwtUtil), middleware.AdminOnly())
		{
			customerHandler.RegisterRoutes(admin)
			productHandler.RegisterRoutes(admin)
			categoryHandler.RegisterRoutes(admin)
			notificationHandler.RegisterAdminRoutes(admin)
		}

		// 订单路由（管理端 + 独立限流）
		orderGroup := api.Group("")
		orderGroup.Use(middleware.JWTAuthMiddleware(jwtUtil), middleware.AdminOnly(), middleware.OrderRateLimit(cfg))
		{
			orderHandler.RegisterRoutes(orderGroup)
		}
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting on " + serverAddr)
	if err := r.Run(serverAddr); err != nil {
		logger.Fatal("服务启动失败", "err", err)
	}
}
