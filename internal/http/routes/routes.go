package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/slideshare/internal/http/middleware"
	"github.com/briangreenhill/slideshare/pkg/slideshare"
)

// Slides is the part of *slideshare.Client the gateway serves.
type Slides interface {
	GetSlideshow(ctx context.Context, id int64) (*slideshare.Slideshow, error)
	GetSlideshowByURL(ctx context.Context, rawURL string) (*slideshare.Slideshow, error)
	GetSlideshowsByUsername(ctx context.Context, username string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error)
	GetSlideshowsByTag(ctx context.Context, tag string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error)
	GetSlideshowsByGroup(ctx context.Context, group string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error)
	Search(ctx context.Context, query string) ([]*slideshare.Slideshow, error)
}

type Server struct {
	Router *chi.Mux
	Slides Slides
}

type ServerOptions struct {
	Slides Slides
	Token  string // bearer token for API routes; empty disables the check
}

type listFunc func(ctx context.Context, selector string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error)

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Slides: opts.Slides}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Group(func(pr chi.Router) {
		pr.Use(appmw.RequireToken(opts.Token))
		pr.Get("/slideshows", s.handleSlideshowByURL)
		pr.Get("/slideshows/{id}", s.handleSlideshow)
		pr.Get("/users/{username}/slideshows", s.handleList("username", opts.Slides.GetSlideshowsByUsername))
		pr.Get("/tags/{tag}/slideshows", s.handleList("tag", opts.Slides.GetSlideshowsByTag))
		pr.Get("/groups/{group}/slideshows", s.handleList("group", opts.Slides.GetSlideshowsByGroup))
		pr.Get("/search", s.handleSearch)
	})

	return s
}

func (s *Server) handleSlideshow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid slideshow ID", http.StatusBadRequest)
		return
	}

	show, err := s.Slides.GetSlideshow(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, show)
}

func (s *Server) handleSlideshowByURL(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		http.Error(w, "url required", http.StatusBadRequest)
		return
	}

	show, err := s.Slides.GetSlideshowByURL(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, show)
}

func (s *Server) handleList(param string, list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := windowFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		shows, err := list(r.Context(), chi.URLParam(r, param), opts...)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeJSON(w, r, shows)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q required", http.StatusBadRequest)
		return
	}

	shows, err := s.Slides.Search(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, shows)
}

// windowFromQuery reads optional offset and limit parameters.
func windowFromQuery(r *http.Request) ([]slideshare.ListOption, error) {
	var opts []slideshare.ListOption
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid offset")
		}
		opts = append(opts, slideshare.WithOffset(n))
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid limit")
		}
		opts = append(opts, slideshare.WithLimit(n))
	}
	return opts, nil
}

// statusFor maps a client error onto the response status.
func statusFor(err error) int {
	var (
		ve *slideshare.ValidationError
		se *slideshare.ServiceError
		pe *slideshare.ProtocolError
		te *slideshare.TransportError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &se):
		if se.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	case errors.As(err, &pe), errors.As(err, &te):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var se *slideshare.ServiceError
	if errors.As(err, &se) && se.HasCode {
		body.Code = se.Code
	}

	ev := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("slideshare request failed")

	s.writeStatusJSON(w, r, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	s.writeStatusJSON(w, r, http.StatusOK, v)
}

func (s *Server) writeStatusJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}
