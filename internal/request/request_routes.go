package request

import (
	"spa-portal/internal/middleware"
	"spa-portal/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	authMW gin.HandlerFunc,
	rdb *redis.Client,
) {
	requests := r.Group("/requests")
	requests.Use(authMW)
	{
		requests.POST("/leave",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "requests", "create"),
			middleware.Idempotency(rdb),
			handler.SubmitLeave,
		)
		requests.POST("/overtime",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "requests", "create"),
			middleware.Idempotency(rdb),
			handler.SubmitOvertime,
		)

		requests.GET("/notifications",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "requests", "read_own"),
			handler.Notifications,
		)

		requests.GET("/mine",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "requests", "read_own"),
			handler.ListOwn,
		)

		requests.GET("/department",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "requests", "read_department"),
			handler.ListDepartment,
		)
		requests.GET("/department/feed",
			middleware.RBACAuthorize(rbacService, "requests", "read_department"),
			handler.Feed,
		)

		requests.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "requests", "read_all"),
			handler.ListAll,
		)

		requests.POST("/:kind/:id/approve",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "requests", "approve"),
			handler.Approve,
		)
		requests.POST("/:kind/:id/reject",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "requests", "approve"),
			handler.Reject,
		)
	}
}
