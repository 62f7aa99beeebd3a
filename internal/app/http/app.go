package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketplace_admin/internal/middleware"
	httprouters "marketplace_admin/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// bodyLimit покрывает multipart загрузку 10 файлов по 5MB
const bodyLimit = "60M"

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
}

func New(log *slog.Logger, host, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = NewCustomValidator()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.CORS())
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(bodyLimit))
	e.Use(middleware.PrometheusMetrics)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
	}
}

// Echo exposes the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.host, s.port)
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api/v1")
	{
		api.GET("/events", s.routers.Events)

		pubGroup := api.Group("/publications")
		{
			pubGroup.GET("", s.routers.ListPublications)
			pubGroup.POST("", s.routers.CreatePublication)
			pubGroup.GET("/:id", s.routers.GetPublication)
			pubGroup.PATCH("/:id", s.routers.UpdatePublication)
			pubGroup.DELETE("/:id", s.routers.DeletePublication)
			pubGroup.PATCH("/:id/status", s.routers.ChangeStatus)
			pubGroup.POST("/:id/restore", s.routers.RestorePublication)
			pubGroup.POST("/:id/hide", s.routers.HidePublication)
			pubGroup.POST("/:id/unhide", s.routers.UnhidePublication)
			pubGroup.POST("/:id/media", s.routers.AddMedia)
			pubGroup.PUT("/:id/media/order", s.routers.SetMediaOrder)
			pubGroup.PUT("/:id/cover", s.routers.SetCover)
			pubGroup.PUT("/:id/extras", s.routers.SetExtras)
			pubGroup.GET("/:id/moderation", s.routers.GetModeration)
			pubGroup.GET("/:id/rejection", s.routers.GetRejection)
		}

		mediaGroup := api.Group("/media")
		{
			mediaGroup.DELETE("/:media_id", s.routers.DeleteMedia)
			mediaGroup.POST("/:media_id/restore", s.routers.RestoreMedia)
		}

		categoryGroup := api.Group("/categories")
		{
			categoryGroup.GET("", s.routers.ListCategories)
			categoryGroup.GET("/active", s.routers.ListActiveCategories)
			categoryGroup.GET("/:id", s.routers.GetCategory)
		}

		uploadGroup := api.Group("/uploads")
		{
			uploadGroup.POST("/image", s.routers.UploadImage)
			uploadGroup.POST("/images", s.routers.UploadImages)
			uploadGroup.DELETE("/:public_id", s.routers.DeleteUpload)
		}
	}
}
