package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finditweb/internal/config"
	"finditweb/internal/listing"
	"finditweb/internal/middleware"
	"finditweb/internal/rate"
	"finditweb/internal/session"
	"finditweb/internal/upstream"
	"finditweb/internal/util"
	"finditweb/internal/version"
)

//go:embed static
var staticFS embed.FS

type Handlers struct {
	cfg     config.Config
	store   *session.Store
	api     *upstream.Client
	fetcher *listing.Fetcher
	limiter *rate.Limiter
	tmpl    *template.Template
}

func NewRouter(cfg config.Config, store *session.Store, api *upstream.Client) http.Handler {
	h := &Handlers{
		cfg:     cfg,
		store:   store,
		api:     api,
		fetcher: listing.NewFetcher(api, store),
		limiter: rate.NewLimiter(),
		tmpl:    parseTemplates(),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, 200, map[string]any{"status": "ok", "version": version.Current()})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready := map[string]any{
			"checked_at": time.Now().UTC().Format(time.RFC3339),
			"components": map[string]any{},
		}
		comps := ready["components"].(map[string]any)
		if err := h.api.Ping(r.Context()); err != nil {
			comps["findit_api"] = map[string]any{"ok": false, "error": err.Error()}
			ready["status"] = "degraded"
			util.WriteJSON(w, 503, ready)
			return
		}
		comps["findit_api"] = map[string]any{"ok": true}
		ready["status"] = "ready"
		util.WriteJSON(w, 200, ready)
	})

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(store))

		r.Get("/", h.Home)
		r.Get("/items", h.BrowseItems)
		r.Get("/items/{id}", h.ItemDetail)

		r.Get("/login", h.LoginPage)
		r.With(middleware.RateLimit(h.limiter, "login", 20, time.Minute, cfg.TrustProxy)).Post("/login", h.Login)
		r.Get("/register", h.RegisterPage)
		r.With(middleware.RateLimit(h.limiter, "register", 10, time.Minute, cfg.TrustProxy)).Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRFFromCookie(cfg.CSRFCookieName))
			r.Post("/logout", h.Logout)
			r.Post("/notifications/{id}/dismiss", h.DismissNotification)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/items/new", h.NewItemPage)
			r.Get("/items/{id}/edit", h.EditItemPage)
			r.Group(func(r chi.Router) {
				r.Use(middleware.CSRFFromCookie(cfg.CSRFCookieName))
				r.Post("/items", h.CreateItem)
				r.Post("/items/{id}", h.UpdateItem)
				r.Post("/items/{id}/delete", h.DeleteItem)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.AdminPanel)
			r.Group(func(r chi.Router) {
				r.Use(middleware.CSRFFromCookie(cfg.CSRFCookieName))
				r.Post("/users/{id}/toggle-admin", h.AdminToggleAdmin)
				r.Post("/users/{id}/delete", h.AdminDeleteUser)
			})
		})

		r.NotFound(h.NotFound)
	})

	return r
}

func sessionFrom(r *http.Request) (*session.Session, bool) {
	return middleware.SessionFrom(r.Context())
}
