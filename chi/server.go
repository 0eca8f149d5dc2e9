// Package chi exposes the opra services over a JSON HTTP API routed with
// go-chi.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/opra"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const ShutdownTimeout = 5 * time.Second

// RequestTimeout bounds a single API call. Discovery chains run several
// searches and model calls in sequence.
const RequestTimeout = 5 * time.Minute

// Status describes the configured providers for GET /api/status.
type Status struct {
	Providers     map[string]bool `json:"providers"`
	VectorBackend string          `json:"vectorBackend"`
}

// Server is the HTTP API server.
type Server struct {
	ln       net.Listener
	server   *http.Server
	router   chi.Router
	validate *validator.Validate

	// Bind address. Set before calling Open().
	Addr string

	// Origins allowed to call the API from a browser.
	AllowedOrigins []string

	Logger *slog.Logger
	Status Status

	Municipalities opra.MunicipalityService
	Ordinances     opra.OrdinanceService
	Requests       opra.RequestService
	Discovery      opra.DiscoveryService
	Processor      opra.OrdinanceProcessor
	Analyzer       opra.OrdinanceAnalyzer
	Drafter        opra.RequestDrafter
}

// NewServer returns a server with all routes registered. Services are
// looked up when a request is handled, so they may be set afterwards.
func NewServer() *Server {
	s := &Server{
		server:   &http.Server{},
		router:   chi.NewRouter(),
		validate: newValidator(),
	}
	s.server.Handler = s

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Timeout(RequestTimeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowOriginFunc: s.allowOrigin,
		AllowedMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:  []string{"Accept", "Content-Type"},
		MaxAge:          300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, opra.Errorf(opra.ENOTFOUND, "route not found"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		s.registerMunicipalityRoutes(r)
		s.registerOrdinanceRoutes(r)
		s.registerRequestRoutes(r)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("http server stopped", "err", err)
		}
	}()
	return nil
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger().Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(begin),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// DefaultAllowedOrigin is the local frontend dev server.
const DefaultAllowedOrigin = "http://localhost:3000"

func (s *Server) allowOrigin(r *http.Request, origin string) bool {
	if len(s.AllowedOrigins) == 0 {
		return origin == DefaultAllowedOrigin
	}
	return slices.Contains(s.AllowedOrigins, origin) || slices.Contains(s.AllowedOrigins, "*")
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return opra.Errorf(opra.EINVALID, "invalid JSON body: %v", err)
	}
	return s.check(v)
}

// check validates a payload struct.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return opra.Errorf(opra.EINVALID, "invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return opra.Errorf(opra.EINVALID, "invalid request: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return field + " failed " + fe.Tag() + " validation"
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
