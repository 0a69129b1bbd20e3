package main

import (
	"context"
	"fmt"
	"log"

	"github.com/authgate/authgate"
	"github.com/authgate/authgate/api"
	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/domain"
	"github.com/authgate/authgate/flow"
	"github.com/authgate/authgate/logger"
	"github.com/authgate/authgate/oauth2"
	"github.com/authgate/authgate/persistence"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting authgate Authorization Server",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
	)

	if cfg.SessionSecret == "" {
		logger.Log.Fatal("SESSION_SECRET must be set")
	}

	storage, err := persistence.NewStorage(cfg.DBType, cfg.DSN, !cfg.SkipAutoMigrate)
	if err != nil {
		logger.Log.Fatal("failed to initialize repository", zap.Error(err))
	}

	engine := authgate.NewDefaultEngine(storage, cfg)
	regManager := authgate.NewDefaultRegistrationManager(storage, cfg)
	logManager := authgate.NewDefaultLoginManager(storage, cfg)
	sessionManager := authgate.NewDefaultSessionManager(cfg)
	clientVerifier := flow.NewClientVerifier(storage)

	if cfg.SeedDemo {
		if err := seedDemo(storage, regManager); err != nil {
			logger.Log.Error("demo seed failed", zap.Error(err))
		}
	}

	h := api.NewHandler(engine, regManager, logManager, clientVerifier, sessionManager)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	g := e.Group("")
	h.RegisterRoutes(g)

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}

// seedDemo creates a tester user and a sample client for local development.
func seedDemo(storage domain.Storage, reg *flow.RegistrationManager) error {
	ctx := context.Background()

	user, err := reg.Submit(ctx, flow.Registration{
		Username:  "tester",
		Email:     "tester@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Password:  "tester-password",
	})
	if err != nil {
		return err
	}
	logger.Log.Info("created demo user", zap.String("user_id", user.ID.String()))

	client := &oauth2.Client{
		ID:     uuid.New(),
		Secret: "t0p$3cret",
		Name:   "Sample Client Application",
		UserID: &user.ID,
		RedirectURIs: []string{
			"http://127.0.0.1:5000/authorize",
		},
		Scopes: []string{"profile:read", "profile:update", "users:read"},
	}
	if err := storage.CreateClient(ctx, client); err != nil {
		return err
	}
	logger.Log.Info("created demo client", zap.String("client_id", client.ID.String()))
	return nil
}
