package slideshare

// Conversion states reported in a slideshow's Status field.
const (
	StatusQueued     = 0
	StatusConverting = 1
	StatusConverted  = 2
	StatusFailed     = 3
)

// Slideshow is one presentation's metadata.
//
// Callers fill Filename, Title, Description and Tags before an Upload; the
// client fills everything else when it parses a query response. ID stays 0
// until the service has assigned one.
type Slideshow struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EmbedCode         string   `json:"embed_code"`
	Permalink         string   `json:"permalink"`
	Status            int      `json:"status"`
	StatusDescription string   `json:"status_description,omitempty"`
	Filename          string   `json:"filename,omitempty"` // local path, upload only
	Tags              []string `json:"tags"`

	ThumbnailURL      string `json:"thumbnail_url"`
	ThumbnailSmallURL string `json:"thumbnail_small_url"`

	Views      int `json:"views"`
	Downloads  int `json:"downloads"`
	Comments   int `json:"comments"`
	Favorites  int `json:"favorites"`
	SlideCount int `json:"slide_count"`

	Username string `json:"username"`
	Location string `json:"location,omitempty"`
	Created  string `json:"created"` // service format, e.g. "Mon Oct 12 09:21:46 -0500 2009"
	Updated  string `json:"updated"`
	Language string `json:"language"`
	Format   string `json:"format"`

	Download    bool   `json:"download"`
	DownloadURL string `json:"download_url,omitempty"`
	EmbedURL    string `json:"embed_url,omitempty"`

	RelatedIDs []string `json:"related_ids,omitempty"`
}

// AddTag appends tag unless it is already present.
func (s *Slideshow) AddTag(tag string) {
	s.Tags = appendUnique(s.Tags, tag)
}

// AddRelatedID appends a related slideshow id unless it is already present.
func (s *Slideshow) AddRelatedID(id string) {
	s.RelatedIDs = appendUnique(s.RelatedIDs, id)
}

// HasTag reports whether tag is set.
func (s *Slideshow) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Converted reports whether the service finished converting the upload.
func (s *Slideshow) Converted() bool {
	return s.Status == StatusConverted
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
