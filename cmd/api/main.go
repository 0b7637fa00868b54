package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"pickupstand/internal/application"
	"pickupstand/internal/application/webhook_handlers"
	"pickupstand/internal/infrastructure/api"
	"pickupstand/internal/infrastructure/cache"
	calendarinfra "pickupstand/internal/infrastructure/calendar"
	"pickupstand/internal/infrastructure/config"
	"pickupstand/internal/infrastructure/encryption"
	appmiddleware "pickupstand/internal/infrastructure/middleware"
	"pickupstand/internal/infrastructure/persistence"
	shopifyinfra "pickupstand/internal/infrastructure/shopify"
	smsinfra "pickupstand/internal/infrastructure/sms"
	"pickupstand/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found")
	}

	cfg := config.Load()

	// Connect to Postgres and migrate
	db, err := persistence.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := persistence.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Redis is optional: without it, dedupe falls back to the database
	// constraint and availability responses go uncached.
	var store ports.Cache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, logger)
		if err := rc.Ping(context.Background()); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, running without cache")
		} else {
			store = rc
		}
	}

	if cfg.EncryptionKey == "" {
		logger.Fatal().Msg("ENCRYPTION_KEY environment variable is required")
	}
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Initialize repositories
	shopRepo := persistence.NewGormShopRepository(db)
	sessionRepo := persistence.NewGormInstallSessionRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	noteRepo := persistence.NewGormNoteRepository(db)
	pickupRepo := persistence.NewGormPickupRepository(db)
	scheduleRepo := persistence.NewGormScheduleRepository(db)
	orderItemRepo := persistence.NewGormOrderItemRepository(db)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db)
	smsRepo := persistence.NewGormSmsRepository(db)
	calendarAuthRepo := persistence.NewGormCalendarAuthRepository(db)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db)

	// Initialize external clients
	shopifyClient := shopifyinfra.NewClient(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, logger)
	webhookVerifier := shopifyinfra.NewWebhookVerifier(cfg.ShopifyAPISecret)
	smsClient := smsinfra.NewTwilioClient(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioFromNumber,
		cfg.AppURL+"/webhooks/twilio/status",
		cfg.TwilioValidateWebhook,
		logger,
	)
	calendarClient := calendarinfra.NewGoogleClient(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.AppURL+"/auth/google/callback",
		logger,
	)

	// Initialize application services
	shopService := application.NewShopService(
		shopRepo,
		sessionRepo,
		calendarAuthRepo,
		shopifyClient,
		encryptionService,
		logger,
		cfg.AppURL,
		cfg.ShopifyScopes,
		cfg.DefaultTimezone,
	)
	crmService := application.NewCRMService(
		customerRepo,
		noteRepo,
		scheduleRepo,
		smsRepo,
		shopService,
		shopifyClient,
		logger,
	)
	smsService := application.NewSmsService(smsRepo, customerRepo, smsClient, logger)
	calendarService := application.NewCalendarService(
		calendarAuthRepo,
		sessionRepo,
		scheduleRepo,
		pickupRepo,
		customerRepo,
		shopService,
		calendarClient,
		encryptionService,
		logger,
	)
	pickupService := application.NewPickupService(
		pickupRepo,
		scheduleRepo,
		customerRepo,
		shopService,
		calendarService,
		store,
		logger,
		cfg.PickupLeadTimeCutoffHour,
		time.Duration(cfg.AvailabilityCacheTTLSeconds)*time.Second,
	)
	draftOrderService := application.NewDraftOrderService(
		shopService,
		shopifyClient,
		scheduleRepo,
		pickupRepo,
		subscriptionRepo,
		logger,
	)
	plansService := application.NewPlansService(shopService, shopifyClient, subscriptionRepo, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderCreatedHandler(
		crmService,
		calendarService,
		subscriptionRepo,
		scheduleRepo,
		orderItemRepo,
		pickupRepo,
		logger,
	))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewSubscriptionContractHandler(subscriptionRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(shopService, logger))

	webhookService := application.NewWebhookService(webhookEventRepo, store, webhookDispatcher, logger)

	// Initialize HTTP handlers
	customerHandler := api.NewCustomerHandler(crmService, smsService, logger)
	pickupHandler := api.NewPickupHandler(pickupService, logger)
	plansHandler := api.NewPlansHandler(plansService, logger)
	draftOrderHandler := api.NewDraftOrderHandler(draftOrderService, logger)
	calendarHandler := api.NewCalendarHandler(calendarService, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Get("/auth/shopify", oauthInitHandler(shopService, cfg, logger))
	r.Get("/auth/callback", oauthCallbackHandler(shopService, cfg, logger))
	r.Get("/auth/google", googleAuthHandler(calendarService, cfg, logger))
	r.Get("/auth/google/callback", googleCallbackHandler(calendarService, cfg, logger))

	// Webhook endpoints
	r.Post("/webhooks/shopify", shopifyWebhookHandler(webhookVerifier, webhookService, logger))
	r.Post("/webhooks/twilio/sms", twilioInboundHandler(smsService, smsClient, cfg, logger))
	r.Post("/webhooks/twilio/status", twilioStatusHandler(smsService, smsClient, cfg, logger))

	// Storefront availability is read by the theme extension before the
	// buyer has any admin session.
	r.Get("/pickup/availability", pickupHandler.Availability)

	// Embedded admin API
	r.Route("/api", func(r chi.Router) {
		r.Use(api.RequireShop)
		r.Mount("/customers", customerHandler.Routes())
		r.Mount("/notes", customerHandler.NoteRoutes())
		r.Mount("/pickup", pickupHandler.Routes())
		r.Mount("/plans", plansHandler.Routes())
		r.Mount("/draft-orders", draftOrderHandler.Routes())
		r.Mount("/calendar", calendarHandler.Routes())
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// oauthInitHandler starts the Shopify install flow.
func oauthInitHandler(shops *application.ShopService, cfg *config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		returnURL := r.URL.Query().Get("return_url")
		if returnURL == "" {
			returnURL = cfg.FrontendURL
		}

		authURL, err := shops.BeginInstall(r.Context(), shop, returnURL)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to begin install")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler completes the Shopify install flow.
func oauthCallbackHandler(shops *application.ShopService, cfg *config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if shop == "" || code == "" || state == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		installed, returnURL, err := shops.CompleteInstall(r.Context(), shop, code, state)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Install failed")
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}
		if returnURL == "" {
			returnURL = cfg.FrontendURL
		}

		redirectURL := returnURL + "?shopify_oauth=success&shop=" + url.QueryEscape(installed.Domain)
		logger.Info().Str("shop", installed.Domain).Msg("Install completed")
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// googleAuthHandler starts the Google Calendar consent flow for a shop.
func googleAuthHandler(calendar *application.CalendarService, cfg *config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		returnURL := r.URL.Query().Get("return_url")
		if returnURL == "" {
			returnURL = cfg.FrontendURL
		}

		consentURL, err := calendar.BeginAuth(r.Context(), shop, returnURL)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to begin calendar auth")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, consentURL, http.StatusFound)
	}
}

// googleCallbackHandler completes the Google Calendar consent flow.
func googleCallbackHandler(calendar *application.CalendarService, cfg *config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		code := r.URL.Query().Get("code")
		if state == "" || code == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		shop, returnURL, err := calendar.CompleteAuth(r.Context(), state, code)
		if err != nil {
			logger.Error().Err(err).Msg("Calendar auth failed")
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}
		if returnURL == "" {
			returnURL = cfg.FrontendURL
		}

		logger.Info().Str("shop", shop).Msg("Calendar connected")
		http.Redirect(w, r, returnURL+"?calendar=connected", http.StatusFound)
	}
}

// shopifyWebhookHandler verifies and ingests Shopify webhook deliveries.
func shopifyWebhookHandler(
	verifier *shopifyinfra.WebhookVerifier,
	webhooks *application.WebhookService,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			logger.Warn().Msg("Missing X-Shopify-Topic header")
			http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := verifier.Verify(payload, r.Header.Get("X-Shopify-Hmac-SHA256")); err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("Webhook signature verification failed")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
		webhookID := r.Header.Get("X-Shopify-Webhook-Id")

		if err := webhooks.Process(r.Context(), shopDomain, topic, webhookID, payload); err != nil {
			logger.Error().Err(err).Str("topic", topic).Str("shop", shopDomain).Msg("Webhook processing failed")
			// 500 so Shopify retries the delivery.
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"received": "true"})
	}
}

// twilioInboundHandler ingests inbound SMS webhooks from Twilio.
func twilioInboundHandler(
	sms *application.SmsService,
	client ports.SmsClient,
	cfg *config.Config,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := twilioParams(r, client, cfg, logger)
		if !ok {
			http.Error(w, "Invalid signature", http.StatusForbidden)
			return
		}

		// Inbound SMS carries no shop context; the Twilio number maps
		// to a single configured shop.
		if _, err := sms.HandleInbound(r.Context(), cfg.TwilioShopDomain, params["From"], params["Body"], params["MessageSid"]); err != nil {
			logger.Error().Err(err).Str("from", params["From"]).Msg("Failed to ingest inbound SMS")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		// Empty TwiML: no auto-reply.
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`))
	}
}

// twilioStatusHandler ingests delivery status callbacks from Twilio.
func twilioStatusHandler(
	sms *application.SmsService,
	client ports.SmsClient,
	cfg *config.Config,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := twilioParams(r, client, cfg, logger)
		if !ok {
			http.Error(w, "Invalid signature", http.StatusForbidden)
			return
		}

		if err := sms.HandleStatusCallback(r.Context(), params["MessageSid"], params["MessageStatus"]); err != nil {
			logger.Error().Err(err).Str("sid", params["MessageSid"]).Msg("Failed to apply SMS status callback")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// twilioParams parses the form body and checks the request signature
// when validation is enabled.
func twilioParams(r *http.Request, client ports.SmsClient, cfg *config.Config, logger zerolog.Logger) (map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse Twilio webhook form")
		return nil, false
	}
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}

	if cfg.TwilioValidateWebhook {
		fullURL := cfg.AppURL + r.URL.Path
		if !client.ValidateSignature(fullURL, params, r.Header.Get("X-Twilio-Signature")) {
			logger.Warn().Str("path", r.URL.Path).Msg("Twilio signature validation failed")
			return nil, false
		}
	}
	return params, true
}
