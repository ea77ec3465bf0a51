package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"theatreops/internal/auth"
	"theatreops/internal/db"
	"theatreops/internal/mailer"
	"theatreops/internal/notifications"
	"theatreops/internal/ratelimiter"
	"theatreops/internal/reviewlink"
	"theatreops/internal/reviewsrc"
	"theatreops/internal/store"
	"theatreops/internal/verifier"

	"github.com/9ssi7/exponent"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 60
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            time.Minute,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

//	@title			TheatreOps API
//	@description	Admin backend for theatre operations, including review attribution and verification.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	maxOpenConnsStr := os.Getenv("DB_MAX_OPEN_CONNS")
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		log.Fatalf("Invalid value for DB_MAX_OPEN_CONNS: %v", err)
	}

	threshold := 0.2
	if val := os.Getenv("REVIEW_MATCH_THRESHOLD"); val != "" {
		threshold, err = strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("Invalid value for REVIEW_MATCH_THRESHOLD: %v", err)
		}
	}

	verifyInterval := 30 * time.Minute
	if val := os.Getenv("REVIEW_VERIFY_INTERVAL"); val != "" {
		verifyInterval, err = time.ParseDuration(val)
		if err != nil {
			log.Fatalf("Invalid value for REVIEW_VERIFY_INTERVAL: %v", err)
		}
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		theatreName: os.Getenv("THEATRE_NAME"),
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: maxOpenConns,
			maxIdleTime:  os.Getenv("DB_MAX_IDLE_TIME"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:        os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret: os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				iss:           "TheatreOps",
			},
		},
		mail: mailConfig{
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			mailtrap: mailTrapConfig{
				apiKey: os.Getenv("MAILTRAP_API_KEY"),
			},
		},
		reviews: reviewsConfig{
			source: reviewsrc.Config{
				APIKey:            os.Getenv("GOOGLE_PLACES_API_KEY"),
				PlaceID:           os.Getenv("GOOGLE_PLACE_ID"),
				OverrideReviewURL: os.Getenv("REVIEW_URL_OVERRIDE"),
			},
			threshold: threshold,
			interval:  verifyInterval,
			refSalt:   os.Getenv("REVIEW_REF_SALT"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.db.addr, int32(cfg.db.maxOpenConns), cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	storage := store.NewStorage(pool)

	mailtrap, err := mailer.NewMailTrapClient(cfg.mail.mailtrap.apiKey, cfg.mail.fromEmail)
	if err != nil {
		logger.Fatal(err)
	}

	push := notifications.NewExpoAdapter(exponent.NewClient())

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
	)

	links, err := reviewlink.NewGenerator(cfg.reviews.refSalt)
	if err != nil {
		logger.Fatal(err)
	}

	fetcher := reviewsrc.NewGoogleAdapter(cfg.reviews.source)

	reviewVerifier := verifier.New(
		storage.ReviewRequests,
		storage.JobLocks,
		fetcher,
		verifier.Config{
			Source:    cfg.reviews.source,
			Threshold: cfg.reviews.threshold,
			Method:    reviewsrc.Name,
		},
		logger,
	)
	reviewVerifier.OnVerified(func(ctx context.Context, rr store.ReviewRequest) {
		tokens, err := storage.PushTokens.ListAll(ctx)
		if err != nil {
			logger.Errorw("listing staff push tokens", "error", err)
			return
		}
		if err := notifications.SendReviewVerified(ctx, push, tokens, rr.BookingID, rr.PublicID); err != nil {
			logger.Warnw("sending verification push", "error", err)
		}
	})

	app := &application{
		config:        cfg,
		store:         storage,
		logger:        logger,
		mailer:        mailtrap,
		push:          push,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		verifier:      reviewVerifier,
		links:         links,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		stat := pool.Stat()
		return map[string]any{
			"total_conns": stat.TotalConns(),
			"idle_conns":  stat.IdleConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	app.runVerificationLoop(loopCtx, cfg.reviews.interval)

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
