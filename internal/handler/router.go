package handler

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full API route table.
func NewRouter(
	events *EventHandler,
	requests *RequestHandler,
	users *UserHandler,
	categories *CategoryHandler,
	compilations *CompilationHandler,
	comments *CommentHandler,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger)
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	// Public surface.
	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.GetPublicEvents)
		r.Get("/{id}", events.GetPublicEvent)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categories.GetCategories)
		r.Get("/{catId}", categories.GetCategory)
	})
	r.Route("/compilations", func(r chi.Router) {
		r.Get("/", compilations.GetCompilations)
		r.Get("/{compId}", compilations.GetCompilation)
	})
	r.Get("/comments/{eventId}", comments.GetEventComments)

	// Private surface, keyed by the acting user's id.
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.GetUserEvents)
			r.Post("/", events.CreateEvent)
			r.Get("/{eventId}", events.GetUserEvent)
			r.Patch("/{eventId}", events.UpdateUserEvent)
			r.Get("/{eventId}/requests", requests.GetEventRequests)
			r.Patch("/{eventId}/requests", requests.ModerateRequests)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", requests.GetUserRequests)
			r.Post("/", requests.CreateRequest)
			r.Patch("/{requestId}/cancel", requests.CancelRequest)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Post("/", comments.CreateComment)
			r.Patch("/{commentId}", comments.UpdateComment)
			r.Delete("/{commentId}", comments.DeleteComment)
		})
	})

	// Administrative surface.
	r.Route("/admin", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.GetAdminEvents)
			r.Patch("/{eventId}", events.UpdateAdminEvent)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categories.CreateCategory)
			r.Patch("/{catId}", categories.UpdateCategory)
			r.Delete("/{catId}", categories.DeleteCategory)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.GetUsers)
			r.Post("/", users.CreateUser)
			r.Delete("/{userId}", users.DeleteUser)
		})
		r.Route("/compilations", func(r chi.Router) {
			r.Post("/", compilations.CreateCompilation)
			r.Patch("/{compId}", compilations.UpdateCompilation)
			r.Delete("/{compId}", compilations.DeleteCompilation)
		})
		r.Delete("/comments/{commentId}", comments.AdminDeleteComment)
	})

	return r
}
