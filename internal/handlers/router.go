package handlers

import (
	"net/http"
	"time"

	mW "github.com/cashora/backend/internal/middleware"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router bundles everything NewRouter mounts.
type Router struct {
	Verifier      mW.TokenVerifier
	Auth          *AuthHandler
	Registrations *RegistrationHandler
	Users         *UserHandler
	Banks         *BankHandler
	Requests      *RequestHandler
	Admin         *AdminHandler
	Portal        *PortalHandler
	UploadsDir    string
	// AllowedOrigins defaults to any http(s) origin.
	AllowedOrigins []string
}

// NewRouter builds the route tree. Callers may mount more routes (metrics,
// swagger) on the returned mux before serving.
func NewRouter(rt Router) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := rt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		services.SendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	auth := mW.AuthMiddleware(rt.Verifier)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", rt.Auth.SignUp)
		r.Post("/auth/signin", rt.Auth.SignIn)
		r.Post("/admin/signin", rt.Auth.AdminSignIn)
		r.With(auth).Post("/auth/logout", rt.Auth.Logout)

		r.Route("/portal", func(r chi.Router) {
			r.Use(auth)
			r.Use(mW.RequireRole(models.RoleUser))

			r.Get("/profile", rt.Auth.Profile)
			r.Get("/dashboard", rt.Portal.Dashboard)
			r.Get("/requests", rt.Requests.ListMine)
			r.Post("/deposits", rt.Requests.CreateDeposit)
			r.Post("/withdrawals", rt.Requests.CreateWithdrawal)
			r.Post("/sends", rt.Requests.CreateSend)

			r.Get("/support/messages", rt.Portal.SupportHistory)
			r.Post("/support/messages", rt.Portal.SupportSend)
			r.Delete("/support/messages", rt.Portal.SupportReset)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth)
			r.Use(mW.RequireRole(models.RoleAdmin))

			r.Get("/profile", rt.Auth.Profile)
			r.Get("/dashboard", rt.Admin.Dashboard)

			r.Get("/users", rt.Users.List)
			r.Get("/users/{id}", rt.Users.Get)
			r.Put("/users/{id}", rt.Users.Update)
			r.Delete("/users/{id}", rt.Users.Delete)

			r.Get("/registrations", rt.Registrations.List)
			r.Get("/registrations/{id}", rt.Registrations.Get)
			r.Post("/registrations/{id}/approve", rt.Registrations.Approve)
			r.Post("/registrations/{id}/reject", rt.Registrations.Reject)

			r.Get("/banks", rt.Banks.List)
			r.Post("/banks", rt.Banks.Add)
			r.Delete("/banks/{id}", rt.Banks.Delete)

			for path, kind := range map[string]models.RequestKind{
				"/deposits":    models.KindDeposit,
				"/withdrawals": models.KindWithdrawal,
				"/sends":       models.KindSend,
			} {
				r.Route(path, func(r chi.Router) {
					r.Get("/", rt.Requests.List(kind))
					r.Get("/{id}", rt.Requests.Get(kind))
					r.Post("/{id}/approve", rt.Requests.Approve(kind))
					r.Post("/{id}/reject", rt.Requests.Reject(kind))
				})
			}

			r.Get("/transactions", rt.Admin.Transactions)
			r.Get("/transactions/summary", rt.Admin.TransactionSummary)
			r.Get("/settings", rt.Admin.GetSettings)
			r.Put("/settings", rt.Admin.UpdateSettings)
			r.Post("/emails", rt.Admin.SendEmail)

			r.Handle("/uploads/*", http.StripPrefix("/api/v1/admin/uploads", mW.DocumentServer(rt.UploadsDir)))
		})
	})

	return r
}
