package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, uploader service.Uploader, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}

	s.setupRoutes(uploader)

	return s
}

func (s *Server) setupRoutes(uploader service.Uploader) {
	// Repositories
	userRepo := repository.NewUserRepository(s.db, s.logger)
	formRepo := repository.NewFormRepository(s.db, s.logger)
	questionRepo := repository.NewQuestionRepository(s.db, s.logger)
	responseRepo := repository.NewResponseRepository(s.db, s.logger)

	// Services
	tokenService := service.NewTokenService(s.cfg)
	accountService := service.NewAccountService(userRepo, tokenService, uploader, s.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(accountService, s.logger)
	formHandler := handler.NewFormHandler(formRepo, s.logger)
	questionHandler := handler.NewQuestionHandler(questionRepo, s.logger)
	responseHandler := handler.NewResponseHandler(responseRepo, questionRepo, formRepo, s.logger)

	authRequired := middleware.Auth(tokenService, userRepo, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	v1 := s.router.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh-token", authHandler.RefreshToken)

		users.POST("/logout", authRequired, authHandler.Logout)
		users.GET("/current-user", authRequired, authHandler.CurrentUser)
		users.PATCH("/update-account", authRequired, authHandler.UpdateAccount)
		users.PATCH("/avatar", authRequired, authHandler.UpdateAvatar)
	}

	forms := v1.Group("/forms")
	{
		forms.GET("", formHandler.ListAll)

		forms.POST("", authRequired, formHandler.Create)
		forms.GET("/my-forms", authRequired, formHandler.ListMine)
		forms.GET("/:id", authRequired, formHandler.GetByID)
		forms.PATCH("/:id", authRequired, formHandler.Update)
		forms.DELETE("/:id", authRequired, formHandler.Delete)
	}

	questions := v1.Group("/questions")
	questions.Use(authRequired)
	{
		questions.POST("", questionHandler.Create)
		questions.GET("", questionHandler.ListAll)
		questions.GET("/form/:formId", questionHandler.ListByForm)
		questions.GET("/:id", questionHandler.GetByID)
		questions.PATCH("/:id", questionHandler.Update)
		questions.DELETE("/:id", questionHandler.Delete)
	}

	responses := v1.Group("/responses")
	responses.Use(authRequired)
	{
		responses.POST("", responseHandler.Create)
		responses.GET("/form/:formId", responseHandler.ListByForm)
		responses.GET("/user/:userId", responseHandler.ListByUser)
		responses.GET("/:id", responseHandler.GetByID)
		responses.PATCH("/:id", responseHandler.Update)
		responses.DELETE("/:id", responseHandler.Delete)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
