package slideshare

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// signature is the request hash the service checks: sha1(secret + ts).
func signature(sharedSecret, ts string) string {
	sum := sha1.Sum([]byte(sharedSecret + ts))
	return hex.EncodeToString(sum[:])
}

// signedParams returns the auth fields every call carries. The timestamp and
// hash are computed together from the current clock.
func (c *Client) signedParams() map[string]string {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	return map[string]string{
		"api_key": c.apiKey,
		"ts":      ts,
		"hash":    signature(c.sharedSecret, ts),
	}
}

func (c *Client) endpointURL(p string) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	return u.String()
}

// postForm sends params url-encoded and returns the response body.
func (c *Client) postForm(ctx context.Context, op string, params map[string]string) ([]byte, error) {
	form := url.Values{}
	for k, v := range c.signedParams() {
		form.Set(k, v)
	}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(op), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, op)
}

// postFile sends params and the file at filename as multipart/form-data,
// with the file under field.
func (c *Client) postFile(ctx context.Context, op string, params map[string]string, field, filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ValidationError{Field: "filename", Err: err}
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range c.signedParams() {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile(field, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, &ValidationError{Field: "filename", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(op), &body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	c.log.Debug().Str("op", op).Str("url", req.URL.String()).Msg("slideshare request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 300 {
		// the service sometimes pairs an error status with a normal error document
		if se := asServiceError(body); se != nil {
			return nil, se
		}
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s: %s", resp.Status, truncate(body, 200))}
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
