// Package emulator serves the expense API from a local SQLite store, for
// demos and end-to-end tests.
package emulator

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/expense-queue/internal/storage"
)

// DefaultRequestTimeout bounds each emulator request.
const DefaultRequestTimeout = 60 * time.Second

// Options configures the router.
type Options struct {
	// Token, when set, is required as a bearer token on every /api call.
	Token   string
	Timeout time.Duration
}

// NewRouter wires every /api endpoint onto the store.
func NewRouter(st *storage.SQLiteStorage, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}

	queue := NewQueueHandler(st)
	catalog := NewCatalogHandler(st)
	rules := NewRulesHandler(st)
	expenses := NewExpensesHandler(st)
	periodic := NewPeriodicHandler(st)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Route("/api", func(r chi.Router) {
		if opts.Token != "" {
			r.Use(bearerAuth(opts.Token))
		}

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", queue.Next)
			r.Get("/all", queue.All)
			r.Get("/count", queue.Count)
			r.Post("/process", queue.Process)
			r.Post("/bulk-save", queue.BulkSave)
			r.Post("/archive", queue.Archive)
			r.Post("/merge", queue.Merge)
			r.Get("/find-duplicates", queue.FindDuplicates)
			r.Get("/category-type/{id}", queue.CategoryType)
			r.Post("/apply-rules", queue.ApplyRules)
			r.Put("/{id}", queue.Update)
			r.Delete("/{id}", queue.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalog.ListCategories)
			r.Post("/", catalog.CreateCategory)
			r.Put("/{id}", catalog.UpdateCategory)
			r.Delete("/{id}", catalog.DeleteCategory)
		})

		r.Route("/merchants", func(r chi.Router) {
			r.Get("/", catalog.ListMerchants)
			r.Post("/", catalog.CreateMerchant)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", catalog.ListTags)
			r.Post("/", catalog.CreateTag)
			r.Delete("/{id}", catalog.DeleteTag)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", rules.List)
			r.Post("/", rules.Create)
			r.Put("/{id}", rules.Update)
			r.Delete("/{id}", rules.Delete)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", expenses.List)
			r.Get("/{id}", expenses.Get)
			r.Put("/{id}", expenses.Update)
			r.Delete("/{id}", expenses.Delete)
		})

		r.Route("/periodic-expenses", func(r chi.Router) {
			r.Get("/", periodic.List)
			r.Post("/", periodic.Create)
			r.Get("/suggest", periodic.Suggest)
		})

		r.Post("/upload-tickets", expenses.UploadTickets)

		r.Route("/import", func(r chi.Router) {
			r.Post("/xlsx", expenses.Upload)
			r.Get("/history", expenses.History)
			r.Post("/process", expenses.ProcessImports)
			r.Post("/process-all", expenses.ProcessImports)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/parse-all", expenses.ParseNotifications)
			r.Post("/accept-all", expenses.AcceptNotifications)
			r.Post("/discard/{id}", expenses.DiscardNotification)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

// requestLogger logs each request at debug level through slog, so an
// emulator running beside the TUI never writes to the terminal.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("Emulator request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] != token {
				writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
