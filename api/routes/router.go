package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creamlane/creamery-backend/api/controllers"
	"github.com/creamlane/creamery-backend/api/middleware"
	customersvc "github.com/creamlane/creamery-backend/internal/customers"
	productsvc "github.com/creamlane/creamery-backend/internal/products"
	"github.com/creamlane/creamery-backend/pkg/config"
	"github.com/creamlane/creamery-backend/pkg/db"
	"github.com/creamlane/creamery-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	productService productsvc.Service,
	customerService customersvc.Service,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.Post("/", controllers.CreateProduct(productService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetProduct(productService, logg))
			r.Put("/", controllers.UpdateProduct(productService, logg))
			r.Delete("/", controllers.DeleteProduct(productService, logg))
			r.Get("/price", controllers.GetProductPrice(productService, logg))
			r.Get("/price/history", controllers.GetProductPriceHistory(productService, logg))
		})
	})

	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Get("/", controllers.ListCustomers(customerService, logg))
		r.Post("/", controllers.CreateCustomer(customerService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetCustomer(customerService, logg))
			r.Put("/", controllers.UpdateCustomer(customerService, logg))
			r.Delete("/", controllers.DeleteCustomer(customerService, logg))
		})
	})

	return r
}
