package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/config"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	billingsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/billing"
	feedbacksvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/feedback"
	ideasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/ideas"
	insightsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/insights"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	scriptsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/scripts"
	searchsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/search"
	userssvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/users"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	UserService     *userssvc.Service
	QuotaService    *quotasvc.Service
	RateLimiter     *ratesvc.Limiter
	IdeaService     *ideasvc.Service
	ScriptService   *scriptsvc.Service
	InsightService  *insightsvc.Service
	SearchService   *searchsvc.Service
	FeedbackService *feedbacksvc.Service
	BillingService  *billingsvc.Service
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	meHandler := handlers.NewMeHandler(deps.UserService)
	quotaHandler := handlers.NewQuotaHandler(deps.QuotaService)
	searchHandler := handlers.NewSearchHandler(deps.SearchService, deps.RateLimiter)
	ideaHandler := handlers.NewIdeaHandler(deps.IdeaService, deps.RateLimiter)
	scriptHandler := handlers.NewScriptHandler(deps.ScriptService, deps.RateLimiter)
	insightHandler := handlers.NewInsightHandler(deps.InsightService, deps.RateLimiter)
	feedbackHandler := handlers.NewFeedbackHandler(deps.FeedbackService)
	billingHandler := handlers.NewBillingHandler(deps.BillingService, deps.Config.Billing.WebhookSecret)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/me", meHandler.Handle)
		r.With(authMW).Get("/usage", quotaHandler.Handle)

		r.With(authMW).Post("/search/trends", searchHandler.Trends)

		r.With(authMW).Post("/ideas/ideate", ideaHandler.Ideate)
		r.With(authMW).Post("/ideas", ideaHandler.Save)
		r.With(authMW).Get("/ideas", ideaHandler.List)
		r.With(authMW).Get("/ideas/{id}", ideaHandler.Get)
		r.With(authMW).Delete("/ideas/{id}", ideaHandler.Delete)

		r.With(authMW).Post("/scripts/generate", scriptHandler.Generate)
		r.With(authMW).Post("/scripts", scriptHandler.Save)
		r.With(authMW).Get("/scripts", scriptHandler.List)
		r.With(authMW).Get("/scripts/{id}", scriptHandler.Get)
		r.With(authMW).Delete("/scripts/{id}", scriptHandler.Delete)
		r.With(authMW).Post("/scripts/{id}/export", scriptHandler.Export)

		r.With(authMW).Post("/insights/analyze", insightHandler.Analyze)
		r.With(authMW).Get("/insights", insightHandler.List)

		r.With(authMW).Post("/feedback", feedbackHandler.Submit)
		r.With(authMW).Get("/feedback", feedbackHandler.List)

		r.With(authMW).Post("/billing/checkout", billingHandler.Checkout)
		r.Post("/billing/webhook", billingHandler.Webhook)
	})
}
