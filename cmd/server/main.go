// Command server runs the Readers Haven API: authentication, the book shelf,
// quotes, profile, and the simulated payments flow behind a single chi
// router.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/readershaven/readershaven/core"
	"github.com/readershaven/readershaven/modules/auth"
	"github.com/readershaven/readershaven/modules/books"
	"github.com/readershaven/readershaven/modules/payments"
	"github.com/readershaven/readershaven/modules/profile"
	"github.com/readershaven/readershaven/modules/quotes"
	"github.com/readershaven/readershaven/pkg/config"
	"github.com/readershaven/readershaven/pkg/cookie"
	"github.com/readershaven/readershaven/pkg/email"
	"github.com/readershaven/readershaven/pkg/environment"
	"github.com/readershaven/readershaven/pkg/file"
	"github.com/readershaven/readershaven/pkg/httpserver"
	"github.com/readershaven/readershaven/pkg/jwt"
	"github.com/readershaven/readershaven/pkg/locales"
	"github.com/readershaven/readershaven/pkg/logger"
	mongopkg "github.com/readershaven/readershaven/pkg/mongo"
	"github.com/readershaven/readershaven/pkg/ratelimit"
	redispkg "github.com/readershaven/readershaven/pkg/redis"
	"github.com/readershaven/readershaven/pkg/requestid"
	"github.com/readershaven/readershaven/storage/mongodb"
)

const serviceName = "readershaven-api"

type appConfig struct {
	UploadsDir     string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	UploadsBaseURL string `env:"UPLOADS_BASE_URL" envDefault:"/uploads"`
	LocalesFile    string `env:"LOCALES_FILE"`

	// Requests per minute allowed against the credential endpoints from a
	// single client address.
	CredentialRateLimit int `env:"CREDENTIAL_RATE_LIMIT" envDefault:"10"`

	PaymentProcessingDelay time.Duration `env:"PAYMENT_PROCESSING_DELAY" envDefault:"0s"`
}

func main() {
	ctx := context.Background()

	var (
		logCfg   logger.Config
		envCfg   environment.Config
		httpCfg  httpserver.Config
		mongoCfg mongopkg.Config
		redisCfg redispkg.Config
		authCfg  auth.Config
		emailCfg email.Config
		appCfg   appConfig
		s3Cfg    file.S3Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&envCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&mongoCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&authCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&s3Cfg) },
	} {
		if err := load(); err != nil {
			slog.Error("failed to load configuration", logger.Error(err))
			os.Exit(1)
		}
	}

	log := logger.NewFromConfig(logCfg, serviceName,
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			if id := requestid.FromContext(ctx); id != "" {
				return logger.RequestID(id), true
			}
			return slog.Attr{}, false
		}),
	)

	if err := run(ctx, log, envCfg, httpCfg, mongoCfg, redisCfg, authCfg, emailCfg, appCfg, s3Cfg); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	log *slog.Logger,
	envCfg environment.Config,
	httpCfg httpserver.Config,
	mongoCfg mongopkg.Config,
	redisCfg redispkg.Config,
	authCfg auth.Config,
	emailCfg email.Config,
	appCfg appConfig,
	s3Cfg file.S3Config,
) error {
	db, err := mongopkg.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(shutdownCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	redisClient, err := redispkg.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	jwtSvc, err := jwt.NewFromString(authCfg.JWTSecret)
	if err != nil {
		return err
	}

	localeSet, err := locales.Load(appCfg.LocalesFile)
	if err != nil {
		return err
	}

	var avatarStorage file.Storage
	if s3Cfg.Bucket != "" {
		avatarStorage, err = file.NewS3Storage(ctx, s3Cfg)
	} else {
		avatarStorage, err = file.NewLocalStorage(appCfg.UploadsDir, appCfg.UploadsBaseURL)
	}
	if err != nil {
		return err
	}

	var mailer email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return err
		}
	} else if envCfg.IsDevelopment() {
		mailer = email.NewDevSender(emailCfg.DevOutputDir)
	}

	users := mongodb.NewUserRepository(db)
	cookies := cookie.New()
	sessions := auth.NewSessionManager(jwtSvc, cookies, users, authCfg, envCfg)
	csrf := auth.NewCSRF(cookies, authCfg, envCfg)
	captcha := auth.NewCaptchaVerifier(authCfg, envCfg)

	authSvc := auth.NewService(users, sessions, captcha, mailer, authCfg, envCfg, log)
	oauthSvc := auth.NewOAuthService(users, sessions, auth.NewRedisStateStore(redisClient), authCfg, envCfg, log)

	credLimiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewRedisStore(redisClient, "credentials"),
		appCfg.CredentialRateLimit,
		time.Minute,
	)
	if err != nil {
		return err
	}
	credMiddleware := ratelimit.Middleware(credLimiter, ratelimit.Composite(ratelimit.ByIP, ratelimit.ByPath))

	booksSvc := books.NewService(mongodb.NewBookRepository(db), log)
	quotesSvc := quotes.NewService(mongodb.NewQuoteRepository(db), log)
	profileSvc := profile.NewService(users, avatarStorage, localeSet, log)
	paymentsSvc := payments.NewService(payments.NewRedisLog(redisClient), log,
		payments.WithProcessingDelay(appCfg.PaymentProcessingDelay))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(core.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(core.CORS(envCfg.FrontendURL))

	r.Mount("/auth", auth.Router(auth.RouterOptions{
		Service:           authSvc,
		Sessions:          sessions,
		CSRF:              csrf,
		OAuth:             oauthSvc,
		CredentialLimiter: credMiddleware,
	}))
	r.Mount("/books", booksSvc.Router(sessions))
	r.Mount("/quotes", quotesSvc.Router(sessions))
	r.Mount("/profile", profileSvc.Router(sessions))
	r.Mount("/payments", paymentsSvc.Router(sessions, csrf))

	if local, ok := avatarStorage.(*file.LocalStorage); ok {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.BaseDir())))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		mongopkg.Healthcheck(db.Client()),
		redispkg.Healthcheck(redisClient),
	))

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("readers haven api started",
				slog.String("addr", httpCfg.Addr),
				slog.String("env", envCfg.Env),
			)
		}),
	)
	return srv.Run(ctx, r)
}
