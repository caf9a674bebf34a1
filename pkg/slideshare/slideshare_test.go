package slideshare

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeService is a stand-in SlideShare API. It answers every path with the
// body registered for it and records what it was sent.
type fakeService struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]string
	requests  []recordedRequest
}

type recordedRequest struct {
	Path   string
	Form   url.Values
	Files  map[string][]byte
	Method string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{t: t, responses: map[string]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) respond(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = body
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Path: strings.TrimPrefix(r.URL.Path, "/api/2/"), Method: r.Method, Files: map[string][]byte{}}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.Form = url.Values(r.MultipartForm.Value)
		for field, headers := range r.MultipartForm.File {
			fh, err := headers[0].Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(fh)
			_ = fh.Close()
			rec.Files[field] = data
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.Form = r.PostForm
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	body, ok := f.responses[rec.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, body)
}

func (f *fakeService) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeService) lastCall() recordedRequest {
	f.t.Helper()
	calls := f.calls()
	require.NotEmpty(f.t, calls, "no request reached the fake service")
	return calls[len(calls)-1]
}

var fixedNow = time.Unix(1700000000, 0)

func (f *fakeService) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(f.server.URL + "/api/2"),
		WithHTTPClient(f.server.Client()),
		WithClock(func() time.Time { return fixedNow }),
	}
	c, err := New("key-123", "s3cret", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

// countingDoer counts calls and fails every one.
type countingDoer struct {
	n int
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.n++
	return nil, context.DeadlineExceeded
}

const slideshowDoc = `<?xml version="1.0" encoding="UTF-8"?>
<Slideshow>
  <ID>42</ID>
  <Title>Go in Production</Title>
  <Description>Lessons &amp; patterns</Description>
  <Status>2</Status>
  <Username>gopher</Username>
  <URL>https://www.slideshare.net/gopher/go-in-production</URL>
  <ThumbnailURL>https://cdn.example/thumb.jpg</ThumbnailURL>
  <ThumbnailSmallURL>https://cdn.example/thumb-small.jpg</ThumbnailSmallURL>
  <Embed>&lt;iframe src="x"&gt;&lt;/iframe&gt;</Embed>
  <Created>Mon Oct 12 09:21:46 -0500 2009</Created>
  <Updated>Tue Oct 13 10:00:00 -0500 2009</Updated>
  <Language>en</Language>
  <Format>pdf</Format>
  <Download>1</Download>
  <DownloadUrl>https://cdn.example/go.pdf</DownloadUrl>
  <SlideshowEmbedUrl>https://www.slideshare.net/slideshow/embed_code/42</SlideshowEmbedUrl>
  <Tags>
    <Tag Count="1" Owner="1">php</Tag>
    <Tag Count="1" Owner="1">php</Tag>
    <Tag Count="2" Owner="0">go</Tag>
  </Tags>
  <NumDownloads>7</NumDownloads>
  <NumViews>1200</NumViews>
  <NumComments>3</NumComments>
  <NumFavorites>12</NumFavorites>
  <NumSlides>30</NumSlides>
  <RelatedSlideshows>
    <RelatedSlideshowID rank="1">100</RelatedSlideshowID>
    <RelatedSlideshowID rank="2">101</RelatedSlideshowID>
    <RelatedSlideshowID rank="3">100</RelatedSlideshowID>
  </RelatedSlideshows>
</Slideshow>`

func listDoc(root string, ids ...string) string {
	var b strings.Builder
	b.WriteString("<" + root + "><Name>x</Name><Count>" + "0" + "</Count>")
	for _, id := range ids {
		b.WriteString("<Slideshow><ID>" + id + "</ID><Title>show " + id + "</Title></Slideshow>")
	}
	b.WriteString("</" + root + ">")
	return b.String()
}
