package http

import (
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
	"github.com/jungkj/riscura-sub000/pkg/utils/safe"
)

type Server struct {
	router    *chi.Mux
	authUC    AuthUseCase
	staticDir string
}

type Options func(*Server)

// WithAuth enables the auth endpoints and cookie validation on the API
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithStaticDir serves the SPA from the given directory, falling back
// to index.html for client-side routes
func WithStaticDir(dir string) Options {
	return func(s *Server) {
		s.staticDir = dir
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(recoverer)

	r.Get("/health", healthHandler)

	riskCfg := uc.RiskConfig()

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints stay reachable without a session; /me validates
		// the cookies itself
		if s.authUC != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/login", authLoginHandler(s.authUC))
				r.Get("/callback", authCallbackHandler(s.authUC))
				r.Post("/logout", authLogoutHandler(s.authUC))
				r.Get("/me", authMeHandler(s.authUC))
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/risks", func(r chi.Router) {
				r.Get("/", riskListHandler(uc.Risk, riskCfg))
				r.Post("/", riskCreateHandler(uc.Risk, riskCfg))
				r.Route("/{riskID}", func(r chi.Router) {
					r.Get("/", riskGetHandler(uc.Risk, riskCfg))
					r.Put("/", riskUpdateHandler(uc.Risk, riskCfg))
					r.Delete("/", riskDeleteHandler(uc.Risk))
					r.Get("/controls", riskControlsHandler(uc.Risk))
					r.Post("/controls", riskLinkControlHandler(uc.Risk))
					r.Delete("/controls/{controlID}", riskUnlinkControlHandler(uc.Risk))
				})
			})

			r.Route("/controls", func(r chi.Router) {
				r.Get("/", controlListHandler(uc.Control))
				r.Post("/", controlCreateHandler(uc.Control))
				r.Route("/{controlID}", func(r chi.Router) {
					r.Get("/", controlGetHandler(uc.Control))
					r.Put("/", controlUpdateHandler(uc.Control))
					r.Delete("/", controlDeleteHandler(uc.Control))
					r.Get("/risks", controlRisksHandler(uc.Control, riskCfg))
				})
			})

			r.Route("/questionnaires", func(r chi.Router) {
				r.Get("/", questionnaireListHandler(uc.Questionnaire))
				r.Post("/", questionnaireCreateHandler(uc.Questionnaire))
				r.Route("/{questionnaireID}", func(r chi.Router) {
					r.Get("/", questionnaireGetHandler(uc.Questionnaire))
					r.Put("/", questionnaireUpdateHandler(uc.Questionnaire))
					r.Delete("/", questionnaireDeleteHandler(uc.Questionnaire))
					r.Post("/publish", questionnairePublishHandler(uc.Questionnaire))
					r.Post("/close", questionnaireCloseHandler(uc.Questionnaire))
					r.Get("/responses", responseListHandler(uc.Questionnaire))
					r.Post("/responses", responseCreateHandler(uc.Questionnaire))
					r.Route("/responses/{responseID}", func(r chi.Router) {
						r.Get("/", responseGetHandler(uc.Questionnaire))
						r.Put("/", responseSaveHandler(uc.Questionnaire))
						r.Post("/submit", responseSubmitHandler(uc.Questionnaire))
						r.Post("/review", responseReviewHandler(uc.Questionnaire))
					})
				})
			})

			r.Route("/workflows", func(r chi.Router) {
				r.Get("/", workflowListHandler(uc.Workflow))
				r.Post("/", workflowCreateHandler(uc.Workflow))
				r.Get("/templates", workflowTemplatesHandler(uc.Workflow))
				r.Route("/{workflowID}", func(r chi.Router) {
					r.Get("/", workflowGetHandler(uc.Workflow))
					r.Post("/cancel", workflowCancelHandler(uc.Workflow))
					r.Post("/steps/{stepIndex}/complete", stepCompleteHandler(uc.Workflow))
					r.Post("/steps/{stepIndex}/skip", stepSkipHandler(uc.Workflow))
				})
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", documentListHandler(uc.Document))
				r.Post("/", documentUploadHandler(uc.Document))
				r.Get("/search", documentSearchHandler(uc.Document))
				r.Route("/{documentID}", func(r chi.Router) {
					r.Get("/", documentGetHandler(uc.Document))
					r.Delete("/", documentDeleteHandler(uc.Document))
					r.Get("/download", documentDownloadHandler(uc.Document))
					r.Post("/reindex", documentReindexHandler(uc.Document))
				})
			})

			r.Route("/assistant", func(r chi.Router) {
				r.Route("/conversations", func(r chi.Router) {
					r.Get("/", conversationListHandler(uc.Assistant))
					r.Post("/", conversationCreateHandler(uc.Assistant))
					r.Route("/{conversationID}", func(r chi.Router) {
						r.Get("/", conversationGetHandler(uc.Assistant))
						r.Delete("/", conversationDeleteHandler(uc.Assistant))
						r.Post("/messages", chatHandler(uc.Assistant))
					})
				})
				r.Post("/analyze", analyzeHandler(uc.Assistant))
				r.Route("/reports", func(r chi.Router) {
					r.Get("/", reportListHandler(uc.Assistant))
					r.Get("/{reportID}", reportGetHandler(uc.Assistant))
					r.Delete("/{reportID}", reportDeleteHandler(uc.Assistant))
				})
			})

			r.Get("/metrics/dashboard", dashboardHandler(uc.Metrics))
			r.Get("/audit", auditListHandler(uc.Audit))
		})
	})

	// Static file serving for SPA (catch-all, must be last)
	if s.staticDir != "" {
		r.Get("/*", spaHandler(os.DirFS(s.staticDir)))
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		// If the path is empty, serve index.html
		if urlPath == "" {
			urlPath = "index.html"
		}

		// Try to open the file to check if it exists
		if file, err := staticFS.Open(urlPath); err != nil {
			// File not found, serve index.html for SPA routing
			if indexFile, err := staticFS.Open("index.html"); err == nil {
				defer safe.Close(r.Context(), indexFile)
				w.Header().Set("Content-Type", "text/html")
				safe.Copy(r.Context(), w, indexFile)
				return
			}

			// If index.html is also not found, return 404
			http.NotFound(w, r)
			return
		} else {
			// File exists, close it and let fileServer handle it
			safe.Close(r.Context(), file)
		}

		// Serve the requested file using the file server
		fileServer.ServeHTTP(w, r)
	}
}
