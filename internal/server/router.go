package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	assemblyctrl "medstock/internal/assembly/controller"
	rejectctrl "medstock/internal/reject/controller"
	salectrl "medstock/internal/sale/controller"
)

func NewRouter(
	assemblyCtrl *assemblyctrl.AssemblyController,
	saleCtrl *salectrl.SaleController,
	rejectCtrl *rejectctrl.RejectController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/assemblies", func(r chi.Router) {
			r.Get("/", assemblyCtrl.List)
			r.Post("/", assemblyCtrl.Create)
			r.Delete("/{id}", assemblyCtrl.Delete)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", saleCtrl.List)
			r.Post("/", saleCtrl.Create)
			r.Delete("/{id}", saleCtrl.Delete)
		})

		r.Route("/rejects", func(r chi.Router) {
			r.Get("/", rejectCtrl.List)
			r.Post("/", rejectCtrl.Create)
			r.Delete("/{id}", rejectCtrl.Delete)
		})
	})

	return r
}
