package slideshare

import (
	"errors"
	"strconv"
	"strings"
)

// QueryKind selects which read endpoint a lookup goes to.
type QueryKind int

const (
	ByID QueryKind = iota
	ByURL
	ByUser
	ByTag
	ByGroup
	BySearch
)

type endpoint struct {
	name  string // cache key namespace
	path  string
	param string // field the selector is sent as
	root  string // expected root element
	list  bool
}

var endpoints = [...]endpoint{
	ByID:     {name: "by_id", path: "get_slideshow", param: "slideshow_id", root: "Slideshow"},
	ByURL:    {name: "by_url", path: "get_slideshow", param: "slideshow_url", root: "Slideshow"},
	ByUser:   {name: "by_user", path: "get_slideshows_by_user", param: "username_for", root: "User", list: true},
	ByTag:    {name: "by_tag", path: "get_slideshows_by_tag", param: "tag", root: "Tag", list: true},
	ByGroup:  {name: "by_group", path: "get_slideshows_by_group", param: "group_name", root: "Group", list: true},
	BySearch: {name: "search", path: "search_slideshows", param: "q", root: "Slideshows", list: true},
}

const (
	uploadPath = "upload_slideshow"
	uploadRoot = "SlideShowUploaded"
	errorRoot  = "SlideShareServiceError"
)

func (k QueryKind) endpoint() endpoint {
	return endpoints[k]
}

func (k QueryKind) String() string {
	if k < 0 || int(k) >= len(endpoints) {
		return "QueryKind(" + strconv.Itoa(int(k)) + ")"
	}
	return endpoints[k].name
}

// ListOption narrows a list query to a window of results.
type ListOption func(*window)

type window struct {
	offset, limit       int
	hasOffset, hasLimit bool
}

// WithOffset skips the first n results.
func WithOffset(n int) ListOption {
	return func(w *window) { w.offset, w.hasOffset = n, true }
}

// WithLimit returns at most n results.
func WithLimit(n int) ListOption {
	return func(w *window) { w.limit, w.hasLimit = n, true }
}

func newWindow(opts []ListOption) (window, error) {
	var w window
	for _, o := range opts {
		o(&w)
	}
	if w.hasOffset && w.offset < 0 {
		return w, &ValidationError{Field: "offset", Err: errors.New("must not be negative")}
	}
	if w.hasLimit && w.limit < 0 {
		return w, &ValidationError{Field: "limit", Err: errors.New("must not be negative")}
	}
	return w, nil
}

// apply adds offset and limit to params, only when they were given.
func (w window) apply(params map[string]string) {
	if w.hasOffset {
		params["offset"] = strconv.Itoa(w.offset)
	}
	if w.hasLimit {
		params["limit"] = strconv.Itoa(w.limit)
	}
}

// quoteTags renders tags the way the service expects: "a" "b". Double
// quotes inside a tag are dropped, and blank or repeated tags are skipped.
func quoteTags(tags []string) string {
	var unique []string
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, `"`, ""))
		if t == "" {
			continue
		}
		unique = appendUnique(unique, t)
	}

	quoted := make([]string, 0, len(unique))
	for _, t := range unique {
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " ")
}
