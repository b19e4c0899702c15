package http

import (
	"net/http"
	"time"

	"exam-quiz-service/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps is everything the router needs. Gatherer defaults to the
// prometheus default registry.
type RouterDeps struct {
	Handler  *Handler
	WS       *WSHandler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := deps.Handler

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), observe(deps.Metrics))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-Admin-Key"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if deps.WS != nil {
		r.GET("/ws/leaderboard", gin.WrapF(deps.WS.ServeWS))
	}

	api := r.Group("/api")
	{
		users := api.Group("/users")
		users.POST("/register", h.Register)
		users.GET("/check/:registerNo", h.Check)

		quiz := api.Group("/quiz")
		quiz.GET("/questions/:userId", h.Questions)
		quiz.POST("/submit", h.Submit)
		quiz.GET("/result/:userId", h.Result)
		quiz.GET("/leaderboard", h.Leaderboard)
		quiz.GET("/public-leaderboard", h.PublicLeaderboard)

		admin := api.Group("/admin")
		admin.POST("/validate", h.ValidateKey)

		protected := admin.Group("", h.RequireAdmin())
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/settings", h.GetSettings)
		protected.POST("/settings", h.UpdateSettings)
		protected.POST("/activate", h.Activate)
		protected.GET("/questions", h.ListQuestions)
		protected.POST("/questions", h.CreateQuestion)
		protected.PUT("/questions/:id", h.UpdateQuestion)
		protected.DELETE("/questions/:id", h.DeleteQuestion)
		protected.GET("/leaderboard", h.AdminLeaderboard)
		protected.GET("/user-details/:userId", h.UserDetails)
		protected.POST("/reset/:userId", h.ResetUser)
		protected.POST("/wipe-all-users", h.WipeAllUsers)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Route not found"})
	})
	return r
}
