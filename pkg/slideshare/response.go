package slideshare

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// slideshowXML mirrors one <Slideshow> element.
type slideshowXML struct {
	ID                string `xml:"ID"`
	Title             string `xml:"Title"`
	Description       string `xml:"Description"`
	Status            string `xml:"Status"`
	StatusDescription string `xml:"StatusDescription"`
	Username          string `xml:"Username"`
	URL               string `xml:"URL"`
	ThumbnailURL      string `xml:"ThumbnailURL"`
	ThumbnailSmallURL string `xml:"ThumbnailSmallURL"`
	Embed             string `xml:"Embed"`
	Created           string `xml:"Created"`
	Updated           string `xml:"Updated"`
	Language          string `xml:"Language"`
	Format            string `xml:"Format"`
	Download          string `xml:"Download"`
	DownloadURL       string `xml:"DownloadUrl"`
	EmbedURL          string `xml:"SlideshowEmbedUrl"`
	Location          string `xml:"Location"`

	NumViews     string `xml:"NumViews"`
	NumDownloads string `xml:"NumDownloads"`
	NumComments  string `xml:"NumComments"`
	NumFavorites string `xml:"NumFavorites"`
	NumSlides    string `xml:"NumSlides"`

	Tags       []string `xml:"Tags>Tag"`
	RelatedIDs []string `xml:"RelatedSlideshows>RelatedSlideshowID"`
}

// listXML is any wrapper (User, Tag, Group, Slideshows) around Slideshow children.
type listXML struct {
	Slideshows []slideshowXML `xml:"Slideshow"`
}

type uploadXML struct {
	ID string `xml:"SlideShowID"`
}

type errorXML struct {
	Message struct {
		ID   string `xml:"ID,attr"`
		Text string `xml:",chardata"`
	} `xml:"Message"`
}

// rootElement returns the local name of the document's first element.
func rootElement(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", errors.New("empty document")
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

// decodeDocument checks that body is a want document and unmarshals it into
// v. An error document becomes a *ServiceError, anything else a *ProtocolError.
func decodeDocument(op string, body []byte, want string, v any) error {
	root, err := rootElement(body)
	if err != nil {
		return &ProtocolError{Op: op, Want: want, Err: err}
	}

	if root == errorRoot {
		if se := asServiceError(body); se != nil {
			return se
		}
		return &ProtocolError{Op: op, Want: want, Got: root, Err: errors.New("unreadable error document")}
	}
	if root != want {
		return &ProtocolError{Op: op, Want: want, Got: root}
	}

	if err := xml.Unmarshal(body, v); err != nil {
		return &ProtocolError{Op: op, Want: want, Got: root, Err: err}
	}
	return nil
}

// asServiceError returns the service error body describes, or nil when body
// is not an error document.
func asServiceError(body []byte) *ServiceError {
	if root, err := rootElement(body); err != nil || root != errorRoot {
		return nil
	}
	var doc errorXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil
	}
	return newServiceError(doc.Message.Text, doc.Message.ID)
}

func parseSlideshow(op string, body []byte) (*Slideshow, error) {
	var node slideshowXML
	if err := decodeDocument(op, body, "Slideshow", &node); err != nil {
		return nil, err
	}
	show, err := mapSlideshow(node)
	if err != nil {
		return nil, &ProtocolError{Op: op, Want: "Slideshow", Got: "Slideshow", Err: err}
	}
	return show, nil
}

func parseSlideshows(op string, body []byte, root string) ([]*Slideshow, error) {
	var doc listXML
	if err := decodeDocument(op, body, root, &doc); err != nil {
		return nil, err
	}

	shows := make([]*Slideshow, 0, len(doc.Slideshows))
	for i, node := range doc.Slideshows {
		show, err := mapSlideshow(node)
		if err != nil {
			return nil, &ProtocolError{Op: op, Want: root, Got: root, Err: fmt.Errorf("slideshow %d: %w", i, err)}
		}
		shows = append(shows, show)
	}
	return shows, nil
}

func parseUpload(op string, body []byte) (int64, error) {
	var doc uploadXML
	if err := decodeDocument(op, body, uploadRoot, &doc); err != nil {
		return 0, err
	}
	id, err := parseID(doc.ID)
	if err != nil {
		return 0, &ProtocolError{Op: op, Want: uploadRoot, Got: uploadRoot, Err: err}
	}
	return id, nil
}

// mapSlideshow converts one <Slideshow> element into a record.
func mapSlideshow(node slideshowXML) (*Slideshow, error) {
	id, err := parseID(node.ID)
	if err != nil {
		return nil, err
	}

	s := &Slideshow{
		ID:                id,
		Title:             node.Title,
		Description:       node.Description,
		EmbedCode:         node.Embed,
		Permalink:         node.URL,
		StatusDescription: node.StatusDescription,
		ThumbnailURL:      node.ThumbnailURL,
		ThumbnailSmallURL: node.ThumbnailSmallURL,
		Username:          node.Username,
		Location:          node.Location,
		Created:           node.Created,
		Updated:           node.Updated,
		Language:          node.Language,
		Format:            node.Format,
		DownloadURL:       node.DownloadURL,
		EmbedURL:          node.EmbedURL,
		Tags:              []string{},
	}

	counters := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"Status", node.Status, &s.Status},
		{"NumViews", node.NumViews, &s.Views},
		{"NumDownloads", node.NumDownloads, &s.Downloads},
		{"NumComments", node.NumComments, &s.Comments},
		{"NumFavorites", node.NumFavorites, &s.Favorites},
		{"NumSlides", node.NumSlides, &s.SlideCount},
	}
	for _, c := range counters {
		n, err := parseCount(c.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = n
	}

	if v := strings.TrimSpace(node.Download); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("download flag %q is not a boolean", v)
		}
		s.Download = b
	}

	for _, tag := range node.Tags {
		s.AddTag(tag)
	}
	for _, rel := range node.RelatedIDs {
		s.AddRelatedID(strings.TrimSpace(rel))
	}
	return s, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("missing ID")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ID %q is not a positive integer", raw)
	}
	return id, nil
}

// parseCount reads a non-negative counter; an absent value is 0.
func parseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a count", raw)
	}
	return n, nil
}
