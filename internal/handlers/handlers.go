package handlers

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"toast/api/internal/config"
	"toast/api/internal/crud"
	"toast/api/internal/identity"
	"toast/api/internal/middleware"
	"toast/api/internal/models"
	"toast/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	db       *sql.DB
	cache    *redis.Client
	auth     *service.AuthService
	guard    *service.SessionGuard
	lists    *service.ListService
	tasks    *service.TaskService
	labels   *service.LabelService
	sessions *service.SessionService
}

func NewHandlerSet(log zerolog.Logger, db *sql.DB, cache *redis.Client, provider identity.Provider, cfg *config.AppConfig) HandlerSet {
	pages := crud.Pagination{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	}

	lists := service.NewListService(db, pages)
	tasks := service.NewTaskService(db, lists.Engine(), pages)
	throttle := service.NewLoginThrottle(cache, cfg.Security.LoginAttempts, cfg.Security.LoginWindow, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		db:       db,
		cache:    cache,
		auth:     service.NewAuthService(db, provider, throttle, cfg, log),
		guard:    service.NewSessionGuard(db, log),
		lists:    lists,
		tasks:    tasks,
		labels:   service.NewLabelService(db, tasks.Engine(), pages),
		sessions: service.NewSessionService(db, pages),
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/healthcheck", h.Health)

	router.POST("/register/email", h.RegisterEmail)
	router.POST("/login/email", h.LoginEmail)
	router.POST("/login/discord", h.LoginDiscord)

	protected := router.Group("")
	protected.Use(middleware.Auth(h.guard))
	{
		protected.GET("/whoami", h.Whoami)
		protected.GET("/users/me", h.Me)
		protected.POST("/logout", h.Logout)

		registerResource[models.List, service.ListCreate, service.ListPatch](protected.Group("/lists"), "List", h.lists)
		registerResource[models.Task, service.TaskCreate, service.TaskPatch](protected.Group("/tasks"), "Task", h.tasks)
		registerResource[models.Label, service.LabelCreate, service.LabelPatch](protected.Group("/labels"), "Label", h.labels)

		protected.POST("/tasks/:id/labels", h.AttachLabel)
		protected.DELETE("/tasks/:id/labels/:label_id", h.DetachLabel)

		sessions := protected.Group("/sessions")
		sessions.GET("", listHandler(h.sessions.List))
		sessions.GET("/:id", getHandler("Session", h.sessions.Get))
		sessions.DELETE("/:id", deleteHandler("Session", h.sessions.Delete))
	}
}
