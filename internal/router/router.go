package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/batiflow/tender-service/internal/handlers"
)

// InitRoutes wires the HTTP surface of the tendering workflow.
func InitRoutes(tenderHandler *handlers.TenderHandler, offerHandler *handlers.OfferHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/api/ping", handlers.PingHandler)

	r.Route("/api/tenders", func(r chi.Router) {
		r.Get("/", tenderHandler.GetTenders)
		r.Post("/new", tenderHandler.CreateTender)
		r.Route("/{tenderId}", func(r chi.Router) {
			r.Get("/", tenderHandler.GetTender)
			r.Post("/invite", tenderHandler.Invite)
			r.Post("/cancel", tenderHandler.Cancel)
			r.Post("/clarifications", tenderHandler.AddClarification)
			r.Post("/offers/new", offerHandler.SubmitOffer)
			r.Get("/comparison", offerHandler.Compare)
			r.Post("/adjudicate", offerHandler.Adjudicate)
		})
	})

	return r
}
