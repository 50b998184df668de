package cmd

import (
	"database/sql"
	"fmt"
	"net"

	"github.com/vibast-solutions/ms-go-blog/app/controller"
	"github.com/vibast-solutions/ms-go-blog/app/middleware"
	"github.com/vibast-solutions/ms-go-blog/app/repository"
	"github.com/vibast-solutions/ms-go-blog/app/service"
	"github.com/vibast-solutions/ms-go-blog/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server for the blogging backend.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewPublicFileRepository(db)

	hasher := service.NewPasswordHasher()
	tokens := service.NewTokenIssuer(cfg)
	filesService := service.NewFilesService(fileRepo, cfg)
	userService := service.NewUserService(userRepo, filesService, hasher)
	authService := service.NewAuthService(userService, tokens)

	startHTTPServer(cfg, authService, userService, tokens)
}

func startHTTPServer(cfg *config.Config, authService *service.AuthService, userService *service.UserService, tokens *service.TokenIssuer) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(authService, userService)
	userController := controller.NewUserController(userService, tokens)
	authMiddleware := middleware.NewAuthMiddleware(tokens, userService)

	// Identity resolution is optimistic and global; the guards below decide
	// which routes actually need one.
	e.Use(authMiddleware.ResolveUser)

	auth := e.Group("/auth")
	auth.POST("/sign-up", authController.SignUp)
	auth.POST("/sign-in", authController.SignIn)
	auth.GET("/tokens/refresh", authController.Refresh, authMiddleware.RequireRefresh)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth)
	authProtected.GET("", authController.Authenticate)
	authProtected.POST("/log-out", authController.Logout)
	authProtected.PUT("/change-password", authController.ChangePassword)

	e.POST("/users", userController.Create)
	e.GET("/users", userController.FindAll, authMiddleware.RequireAuth)
	e.GET("/user", userController.Current, authMiddleware.RequireAuth)
	e.PUT("/user", userController.Update, authMiddleware.RequireAuth)
	e.POST("/avatar", userController.AddAvatar, authMiddleware.RequireAuth)
	e.DELETE("/avatar", userController.DeleteAvatar, authMiddleware.RequireAuth)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return nil
}
