// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	aboutfeature "github.com/takimhub/takimhub/internal/app/features/about"
	authgooglefeature "github.com/takimhub/takimhub/internal/app/features/authgoogle"
	calendarfeature "github.com/takimhub/takimhub/internal/app/features/calendar"
	documentsfeature "github.com/takimhub/takimhub/internal/app/features/documents"
	errorsfeature "github.com/takimhub/takimhub/internal/app/features/errors"
	healthfeature "github.com/takimhub/takimhub/internal/app/features/health"
	homefeature "github.com/takimhub/takimhub/internal/app/features/home"
	learnfeature "github.com/takimhub/takimhub/internal/app/features/learn"
	loginfeature "github.com/takimhub/takimhub/internal/app/features/login"
	logoutfeature "github.com/takimhub/takimhub/internal/app/features/logout"
	profilefeature "github.com/takimhub/takimhub/internal/app/features/profile"
	projectsfeature "github.com/takimhub/takimhub/internal/app/features/projects"
	reportsfeature "github.com/takimhub/takimhub/internal/app/features/reports"
	tasksfeature "github.com/takimhub/takimhub/internal/app/features/tasks"
	teamsfeature "github.com/takimhub/takimhub/internal/app/features/teams"
	termsfeature "github.com/takimhub/takimhub/internal/app/features/terms"
	"github.com/takimhub/takimhub/internal/app/store/oauthstate"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. TakimHub initializes the template
// engine, applies session middleware, builds the file storage backend,
// and mounts feature routers for all application areas: home, auth,
// profile, teams, projects, reports, documents, learning, tasks, and
// the calendar.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh profile data
	// on each request. This ensures name and avatar changes take effect
	// immediately.
	sessionMgr.SetUserFetcher(profilestore.NewFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// File storage backend for reports, documents, and learning content.
	fileStore, err := buildStorage(appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Locally stored uploads when the local backend is active
	if _, ok := fileStore.(*storage.Local); ok {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	termsHandler := termsfeature.NewHandler(logger)
	r.Mount("/terms", termsfeature.Routes(termsHandler))

	// Authentication
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(
			deps.MongoDatabase, sessionMgr, errLog,
			oauthstate.New(deps.MongoDatabase),
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
			logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Account
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, fileStore, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Teams and projects
	teamsHandler := teamsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler))

	projectsHandler := projectsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler))

	// Files: reports and project documents
	reportsHandler := reportsfeature.NewHandler(deps.MongoDatabase, fileStore, errLog, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler))

	documentsHandler := documentsfeature.NewHandler(deps.MongoDatabase, fileStore, errLog, logger)
	r.Mount("/documents", documentsfeature.Routes(documentsHandler))

	// Micro-learning
	learnHandler := learnfeature.NewHandler(deps.MongoDatabase, fileStore, errLog, logger)
	r.Mount("/learn", learnfeature.Routes(learnHandler))

	// Tasks
	tasksHandler := tasksfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler))

	// Calendar
	calendarHandler := calendarfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/calendar", calendarfeature.Routes(calendarHandler))

	return r, nil
}

// buildStorage constructs the configured file storage backend.
func buildStorage(appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		logger.Info("using S3 storage",
			zap.String("region", appCfg.StorageS3Region),
			zap.String("bucket", appCfg.StorageS3Bucket))
		return storage.NewS3(storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
			Prefix: appCfg.StorageS3Prefix,
		})
	default:
		logger.Info("using local storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
		return storage.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	}
}
