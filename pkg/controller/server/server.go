package server

import (
	"net/http"

	"log/slog"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/utils/errutil"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

type config struct {
	ghSecret types.GitHubAppSecret
}

type Option func(*config)

func WithGitHubSecret(secret types.GitHubAppSecret) Option {
	return func(cfg *config) {
		cfg.ghSecret = secret
	}
}

func New(uc interfaces.UseCase, options ...Option) *Server {
	cfg := &config{}
	for _, opt := range options {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})
	r.Route("/webhook", func(r chi.Router) {
		r.Route("/github", func(r chi.Router) {
			r.Post("/app", func(w http.ResponseWriter, r *http.Request) {
				// Validate and parse the webhook event synchronously
				action, err := validateGitHubAppEvent(r, cfg.ghSecret)
				if err != nil {
					errutil.HandleError(r.Context(), "fail to validate GitHub App event", err)
					safeWrite(w, http.StatusInternalServerError, []byte(err.Error()))
					return
				}

				// If the event carries nothing to record, return immediately
				if action == nil {
					safeWrite(w, http.StatusOK, []byte(`{"status":"ok","message":"no record required"}`))
					return
				}

				// The request context is cancelled once the response is
				// sent, so the recording runs on a detached context.
				bgCtx := DetachContext(r.Context())

				go dispatchGitHubEvent(bgCtx, uc, action)

				safeWrite(w, http.StatusAccepted, []byte(`{"status":"accepted","message":"record enqueued"}`))
			})
		})
	})

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}
