package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tracksplit/tracksplit-backend/api/controllers"
	"github.com/tracksplit/tracksplit-backend/api/middleware"
	"github.com/tracksplit/tracksplit-backend/internal/disbursement"
	"github.com/tracksplit/tracksplit-backend/internal/notifications"
	"github.com/tracksplit/tracksplit-backend/internal/splits"
	"github.com/tracksplit/tracksplit-backend/internal/works"
	"github.com/tracksplit/tracksplit-backend/pkg/config"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db controllers.Pinger,
	cache controllers.Pinger,
	registry *prometheus.Registry,
	splitsService splits.Service,
	worksService works.Service,
	disbursementService disbursement.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, db, cache, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/works/{workId}", func(r chi.Router) {
			r.Get("/", controllers.GetWork(worksService, logg))
			r.Get("/split", controllers.GetWorkSplit(splitsService, logg))
			r.Put("/split", controllers.ReplaceWorkSplit(splitsService, logg))
			r.Post("/split/propose", controllers.ProposeSplit(splitsService, logg))
		})

		r.Post("/purchases", controllers.SubmitPurchase(disbursementService, logg))
		r.Get("/transactions/{transactionId}", controllers.GetTransaction(disbursementService, logg))
		r.Get("/recipients/{recipientId}/payouts", controllers.ListRecipientPayouts(disbursementService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.AccessRoleAdmin), logg))

		r.Post("/transactions/{transactionId}/redrive", controllers.RedriveTransaction(disbursementService, logg))
	})

	return r
}
