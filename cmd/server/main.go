package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aitools/internal/config"
	"aitools/internal/db"
	"aitools/internal/metrics"
	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/router"
	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// runServer starts the web server; tests replace it.
var runServer = serve

// newRootCmd builds the CLI. Without a subcommand it serves, like serve.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aitools",
		Short:         "AI tools directory server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveRunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (yaml, toml or json)")
	root.AddCommand(serveCmd(), migrateCmd(), promoteCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE:  serveRunE,
	}
}

func serveRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runServer(cmd.Context(), cfg)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema and seed default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Init migrates and seeds
			_, err = db.Init(cfg)
			return err
		},
	}
}

func promoteCmd() *cobra.Command {
	var demote bool
	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant (or with --demote, revoke) admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			database, err := db.Init(cfg)
			if err != nil {
				return err
			}
			role := models.RoleAdmin
			if demote {
				role = models.RoleUser
			}
			users := services.NewUserService(database, cfg.IsAdminEmail)
			if err := users.SetRole(cmd.Context(), args[0], role); err != nil {
				return fmt.Errorf("set role for %s: %w", args[0], err)
			}
			log.Printf("%s is now %s", args[0], role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&demote, "demote", false, "revoke admin rights instead")
	return cmd
}

// observeTracking feeds tracker results into tracking_events_total.
func observeTracking(m *metrics.Metrics) func(services.EventKind, bool, error) {
	return func(kind services.EventKind, stored bool, err error) {
		m.Tracked(kind.String(), stored, err)
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	database, err := db.Init(cfg)
	if err != nil {
		return err
	}

	cache, err := utils.NewCache[[]models.Tool](128)
	if err != nil {
		return err
	}

	// Services
	mailer := services.NewMailService(cfg)
	tools := services.NewToolService(database, cache, cfg.CacheTTL)
	tracker := services.NewTracker(database, cfg.Tracking.QueueSize)
	m, err := metrics.New(tracker.Dropped)
	if err != nil {
		return err
	}
	tracker.OnResult = observeTracking(m)
	tracker.Start(ctx)

	users := services.NewUserService(database, cfg.IsAdminEmail)
	deps := router.Deps{
		SiteURL:     cfg.SiteURL,
		SiteName:    cfg.SiteName,
		Users:       users,
		Tools:       tools,
		Categories:  services.NewCategoryService(database),
		Bookmarks:   services.NewBookmarkService(database),
		Upvotes:     services.NewUpvoteService(database, tools),
		Reviews:     services.NewReviewService(database, tools),
		Submissions: services.NewSubmissionService(database, tools, mailer),
		Blog:        services.NewBlogService(database),
		Newsletter:  services.NewNewsletterService(database, mailer),
		Analytics:   services.NewAnalyticsService(database),
		Metadata:    services.NewMetadataFetcher(nil),
		Captcha:     services.NewCaptchaService(),
		Images:      services.NewImageStore(cfg.ImgurClientID, nil),
		Tracker:     tracker,
		Metrics:     m,
	}

	// Initialize Gin
	r := gin.Default()
	r.Use(m.Middleware())

	// Setup Sessions
	if cfg.InsecureSecret() {
		log.Println("WARNING: SESSION_SECRET is the default value, set a real secret in production")
	}
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("aitools_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates(cfg.TemplatesDir, cfg.SiteName)

	// Static Assets
	r.Static("/static", cfg.StaticDir)

	// Middleware
	r.Use(middleware.LoadUser(users))

	router.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s starting on :%s", cfg.SiteName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if dropped := tracker.Dropped(); dropped > 0 {
		log.Printf("Tracking queue dropped %d events", dropped)
	}
	return nil
}
