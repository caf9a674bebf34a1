package slideshare

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/briangreenhill/slideshare/cache"
)

// Upload sends the file at show.Filename as a new slideshow. On success
// show.ID is set from the service's answer and show is returned; on failure
// show is left untouched. Uploads are never cached.
func (c *Client) Upload(ctx context.Context, show *Slideshow, makeSourcePublic bool) (*Slideshow, error) {
	if show == nil {
		return nil, &ValidationError{Field: "slideshow", Err: errors.New("nil slideshow")}
	}
	if c.username == "" || c.password == "" {
		return show, &ValidationError{Field: "credentials", Err: errors.New("username and password required for upload")}
	}
	if err := checkReadable(show.Filename); err != nil {
		return show, err
	}

	public := "N"
	if makeSourcePublic {
		public = "Y"
	}
	params := map[string]string{
		"username":              c.username,
		"password":              c.password,
		"slideshow_title":       show.Title,
		"slideshow_description": show.Description,
		"slideshow_tags":        quoteTags(show.Tags),
		"make_src_public":       public,
	}

	body, err := c.postFile(ctx, uploadPath, params, "slideshow_srcfile", show.Filename)
	if err != nil {
		return show, err
	}
	id, err := parseUpload(uploadPath, body)
	if err != nil {
		return show, err
	}

	show.ID = id
	c.log.Info().Int64("id", id).Str("title", show.Title).Msg("slideshow uploaded")
	return show, nil
}

func checkReadable(filename string) error {
	if filename == "" {
		return &ValidationError{Field: "filename", Err: errors.New("no file given")}
	}
	info, err := os.Stat(filename)
	if err != nil {
		return &ValidationError{Field: "filename", Err: err}
	}
	if !info.Mode().IsRegular() {
		return &ValidationError{Field: "filename", Err: errors.New(filename + " is not a regular file")}
	}
	f, err := os.Open(filename)
	if err != nil {
		return &ValidationError{Field: "filename", Err: err}
	}
	return f.Close()
}

// GetSlideshow fetches one slideshow by id.
func (c *Client) GetSlideshow(ctx context.Context, id int64) (*Slideshow, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "id", Err: errors.New("must be positive")}
	}
	return c.getOne(ctx, ByID, strconv.FormatInt(id, 10))
}

// GetSlideshowByURL fetches one slideshow by its public url.
func (c *Client) GetSlideshowByURL(ctx context.Context, rawURL string) (*Slideshow, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &ValidationError{Field: "url", Err: errors.New("empty")}
	}
	return c.getOne(ctx, ByURL, rawURL)
}

// GetSlideshowsByUsername lists a user's slideshows.
func (c *Client) GetSlideshowsByUsername(ctx context.Context, username string, opts ...ListOption) ([]*Slideshow, error) {
	return c.getList(ctx, ByUser, username, opts)
}

// GetSlideshowsByTag lists slideshows carrying tag. The tag is sent as given.
func (c *Client) GetSlideshowsByTag(ctx context.Context, tag string, opts ...ListOption) ([]*Slideshow, error) {
	return c.getList(ctx, ByTag, tag, opts)
}

// GetSlideshowsByTags lists slideshows matching several tags, sent as
// "tag1" "tag2".
func (c *Client) GetSlideshowsByTags(ctx context.Context, tags []string, opts ...ListOption) ([]*Slideshow, error) {
	if len(tags) == 0 {
		return nil, &ValidationError{Field: "tag", Err: errors.New("no tags given")}
	}
	return c.getList(ctx, ByTag, quoteTags(tags), opts)
}

// GetSlideshowsByGroup lists the slideshows in a group.
func (c *Client) GetSlideshowsByGroup(ctx context.Context, group string, opts ...ListOption) ([]*Slideshow, error) {
	return c.getList(ctx, ByGroup, group, opts)
}

// Search runs a free-text search.
func (c *Client) Search(ctx context.Context, query string) ([]*Slideshow, error) {
	return c.getList(ctx, BySearch, query, nil)
}

func (c *Client) getOne(ctx context.Context, kind QueryKind, value string) (*Slideshow, error) {
	ep := kind.endpoint()
	params := map[string]string{ep.param: value, "detailed": "1"}
	key := cache.KeyFor(ep.name, map[string]string{ep.param: value})

	var show Slideshow
	if c.lookup(ctx, key, &show) {
		return &show, nil
	}

	body, err := c.postForm(ctx, ep.path, params)
	if err != nil {
		return nil, err
	}
	parsed, err := parseSlideshow(ep.path, body)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, parsed)
	return parsed, nil
}

func (c *Client) getList(ctx context.Context, kind QueryKind, value string, opts []ListOption) ([]*Slideshow, error) {
	ep := kind.endpoint()
	if strings.TrimSpace(value) == "" {
		return nil, &ValidationError{Field: ep.param, Err: errors.New("empty")}
	}
	w, err := newWindow(opts)
	if err != nil {
		return nil, err
	}

	selector := map[string]string{ep.param: value}
	w.apply(selector)
	key := cache.KeyFor(ep.name, selector)

	var shows []*Slideshow
	if c.lookup(ctx, key, &shows) {
		return shows, nil
	}

	params := map[string]string{"detailed": "1"}
	for k, v := range selector {
		params[k] = v
	}
	body, err := c.postForm(ctx, ep.path, params)
	if err != nil {
		return nil, err
	}
	shows, err = parseSlideshows(ep.path, body, ep.root)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, shows)
	return shows, nil
}

// lookup decodes a fresh cache entry into out. Any cache problem is a miss.
func (c *Client) lookup(ctx context.Context, key string, out any) bool {
	if c.cache == nil {
		return false
	}
	entry, ok := c.cache.Read(ctx, key)
	if !ok || len(entry.Body) == 0 {
		c.log.Debug().Str("key", key).Msg("cache miss")
		return false
	}
	if err := json.Unmarshal(entry.Body, out); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		return false
	}
	c.log.Debug().Str("key", key).Msg("cache hit")
	return true
}

// store caches v under key. Failures are logged, never returned.
func (c *Client) store(ctx context.Context, key string, v any) {
	if c.cache == nil {
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.cache.Write(ctx, key, &cache.Entry{Body: body}, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
