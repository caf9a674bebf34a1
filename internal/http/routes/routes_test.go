package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/slideshare/pkg/slideshare"
)

// fakeSlides records the last call and answers with shows or err.
type fakeSlides struct {
	shows []*slideshare.Slideshow
	err   error

	method   string
	selector string
	nOpts    int
}

func (f *fakeSlides) one() (*slideshare.Slideshow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.shows[0], nil
}

func (f *fakeSlides) many(method, selector string, opts []slideshare.ListOption) ([]*slideshare.Slideshow, error) {
	f.method, f.selector, f.nOpts = method, selector, len(opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.shows, nil
}

func (f *fakeSlides) GetSlideshow(_ context.Context, id int64) (*slideshare.Slideshow, error) {
	f.method = "GetSlideshow"
	return f.one()
}

func (f *fakeSlides) GetSlideshowByURL(_ context.Context, rawURL string) (*slideshare.Slideshow, error) {
	f.method, f.selector = "GetSlideshowByURL", rawURL
	return f.one()
}

func (f *fakeSlides) GetSlideshowsByUsername(_ context.Context, username string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error) {
	return f.many("GetSlideshowsByUsername", username, opts)
}

func (f *fakeSlides) GetSlideshowsByTag(_ context.Context, tag string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error) {
	return f.many("GetSlideshowsByTag", tag, opts)
}

func (f *fakeSlides) GetSlideshowsByGroup(_ context.Context, group string, opts ...slideshare.ListOption) ([]*slideshare.Slideshow, error) {
	return f.many("GetSlideshowsByGroup", group, opts)
}

func (f *fakeSlides) Search(_ context.Context, query string) ([]*slideshare.Slideshow, error) {
	return f.many("Search", query, nil)
}

func serve(t *testing.T, s *Server, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(ServerOptions{Slides: &fakeSlides{}, Token: "t0k"})
	rec := serve(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGetSlideshow(t *testing.T) {
	fake := &fakeSlides{shows: []*slideshare.Slideshow{{ID: 42, Title: "Go", Tags: []string{"go"}}}}
	s := New(ServerOptions{Slides: fake})

	rec := serve(t, s, "/slideshows/42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got slideshare.Slideshow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "Go", got.Title)

	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/slideshows/abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/slideshows/0").Code)
}

func TestGetSlideshowByURL(t *testing.T) {
	fake := &fakeSlides{shows: []*slideshare.Slideshow{{ID: 7}}}
	s := New(ServerOptions{Slides: fake})

	rec := serve(t, s, "/slideshows?url=https%3A%2F%2Fwww.slideshare.net%2Fgopher%2Fdeck")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.slideshare.net/gopher/deck", fake.selector)

	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/slideshows").Code)
}

func TestListRoutes(t *testing.T) {
	tests := []struct {
		path     string
		method   string
		selector string
		nOpts    int
	}{
		{"/users/gopher/slideshows", "GetSlideshowsByUsername", "gopher", 0},
		{"/users/gopher/slideshows?offset=10&limit=5", "GetSlideshowsByUsername", "gopher", 2},
		{"/tags/golang/slideshows?limit=3", "GetSlideshowsByTag", "golang", 1},
		{"/groups/gophers/slideshows", "GetSlideshowsByGroup", "gophers", 0},
		{"/search?q=concurrency", "Search", "concurrency", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fake := &fakeSlides{shows: []*slideshare.Slideshow{{ID: 1}, {ID: 2}}}
			s := New(ServerOptions{Slides: fake})

			rec := serve(t, s, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.method, fake.method)
			assert.Equal(t, tt.selector, fake.selector)
			assert.Equal(t, tt.nOpts, fake.nOpts)

			var got []slideshare.Slideshow
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Len(t, got, 2)
		})
	}
}

func TestEmptyListIsArray(t *testing.T) {
	s := New(ServerOptions{Slides: &fakeSlides{shows: []*slideshare.Slideshow{}}})
	rec := serve(t, s, "/tags/none/slideshows")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBadParams(t *testing.T) {
	s := New(ServerOptions{Slides: &fakeSlides{}})
	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/users/gopher/slideshows?offset=x").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/users/gopher/slideshows?limit=1.5").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, "/search").Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code int
	}{
		{"validation", &slideshare.ValidationError{Field: "offset", Err: errors.New("negative")}, http.StatusBadRequest, 0},
		{"not found", &slideshare.ServiceError{Code: slideshare.CodeSlideshowNotFound, HasCode: true, Message: "SlideShow Not Found"}, http.StatusNotFound, 9},
		{"other service error", &slideshare.ServiceError{Code: 6, HasCode: true, Message: "Not a valid file"}, http.StatusUnprocessableEntity, 6},
		{"uncoded service error", &slideshare.ServiceError{Message: "oops"}, http.StatusUnprocessableEntity, 0},
		{"protocol", &slideshare.ProtocolError{Op: "get_slideshow", Want: "Slideshow", Got: "html"}, http.StatusBadGateway, 0},
		{"transport", &slideshare.TransportError{Op: "get_slideshow", Err: errors.New("connection refused")}, http.StatusBadGateway, 0},
		{"transport timeout", &slideshare.TransportError{Op: "get_slideshow", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, 0},
		{"transport canceled", &slideshare.TransportError{Op: "get_slideshow", Err: context.Canceled}, 499, 0},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(ServerOptions{Slides: &fakeSlides{err: tt.err}})
			rec := serve(t, s, "/slideshows/1")
			assert.Equal(t, tt.want, rec.Code)

			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestTokenGuardsAPIRoutes(t *testing.T) {
	fake := &fakeSlides{shows: []*slideshare.Slideshow{{ID: 1}}}
	s := New(ServerOptions{Slides: fake, Token: "t0k"})

	assert.Equal(t, http.StatusUnauthorized, serve(t, s, "/slideshows/1").Code)
	assert.Empty(t, fake.method, "handler must not run without a token")
	assert.Equal(t, http.StatusOK, serve(t, s, "/slideshows/1", "Authorization", "Bearer t0k").Code)
}
