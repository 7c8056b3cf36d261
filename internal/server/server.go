package server

import (
	"log/slog"
	"net/http"
	"time"

	"apnode/internal/domain"
	"apnode/internal/logging"
	"apnode/internal/metrics"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Actors is the public half of domain.KeyService.
type Actors interface {
	CreateActor(username domain.Username) (domain.Actor, error)
	Profile(username domain.Username) (domain.Profile, error)
	PublicKey(username domain.Username) (string, error)
	Endpoints() domain.Endpoints
}

// Deps are the services the routes call into.
type Deps struct {
	Actors   Actors
	Delivery domain.DeliveryService
	Social   domain.SocialService
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// Verifier, when set, authenticates POST /inbox/{username}.
	Verifier *Verifier
	// InboxLimiter throttles POST /inbox/{username} per remote address.
	InboxLimiter *MapLimiter
}

// Server routes HTTP requests to the node's services.
type Server struct {
	deps Deps
	log  *slog.Logger
	mux  *http.ServeMux
	now  func() time.Time
}

// New builds a Server and registers its routes.
func New(deps Deps) *Server {
	s := &Server{
		deps: deps,
		log:  logging.OrDiscard(deps.Logger).With("component", "http"),
		mux:  http.NewServeMux(),
		now:  time.Now,
	}
	s.routes()
	return s
}

// Handler returns the routed handler wrapped in access logging.
func (s *Server) Handler() http.Handler { return s.accessLog(s.mux) }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("POST /create-user/{username}", s.handleCreateUser)
	s.mux.HandleFunc("GET /user/{username}", s.handleProfile)
	s.mux.HandleFunc("GET /user/{username}/followers", s.handleFollowers)
	s.mux.HandleFunc("GET /user/{username}/following", s.handleFollowing)
	s.mux.HandleFunc("POST /send-message", s.handleSend)
	s.mux.HandleFunc("GET /decrypt/{username}", s.handleDecrypt)
	s.mux.HandleFunc("POST /inbox/{username}", s.handleReceive)
	s.mux.HandleFunc("GET /inbox/{username}", s.handleInbox)
	s.mux.HandleFunc("GET /outbox/{username}", s.handleOutbox)
	s.mux.HandleFunc("POST /follow", s.handleFollow)
	s.mux.HandleFunc("POST /like", s.handleLike)
	s.mux.Handle("GET /metrics", s.deps.Metrics.Handler())
}

// statusRecorder captures the status and size for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", s.now().Sub(start),
		)
	})
}
