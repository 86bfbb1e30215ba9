package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ontora-ai/pipelines/errors"
)

// Release is a publishable release record.
type Release struct {
	// TagName is the exact version tag string (e.g., "v1.4.0").
	TagName string `json:"tag_name"`

	// Title is the release headline.
	Title string `json:"name"`

	// Body is the changelog text.
	Body string `json:"body"`

	// PreRelease marks the release as a pre-release.
	PreRelease bool `json:"prerelease"`

	// Draft is always false: published releases go live immediately.
	Draft bool `json:"draft"`

	// Assets lists local paths of archives to attach.
	Assets []string `json:"-"`
}

// Publisher publishes a release record to the hosting service.
type Publisher interface {
	CreateRelease(ctx context.Context, release Release) error
}

// HTTPPublisher publishes releases through a GitHub-compatible REST API.
type HTTPPublisher struct {
	apiURL    string
	uploadURL string
	token     string
	client    *http.Client
}

// PublisherOption configures an HTTPPublisher.
type PublisherOption func(*HTTPPublisher)

// WithEndpoints overrides the API and upload base URLs. Used by tests and
// self-hosted installations.
func WithEndpoints(apiURL, uploadURL string) PublisherOption {
	return func(p *HTTPPublisher) {
		p.apiURL = apiURL
		p.uploadURL = uploadURL
	}
}

// NewHTTPPublisher creates a publisher for the given "owner/repo" slug.
func NewHTTPPublisher(repoSlug, token string, opts ...PublisherOption) (*HTTPPublisher, error) {
	if repoSlug == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "repository slug cannot be empty")
	}
	if token == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "release token cannot be empty")
	}

	p := &HTTPPublisher{
		apiURL:    "https://api.github.com/repos/" + repoSlug + "/releases",
		uploadURL: "https://uploads.github.com/repos/" + repoSlug + "/releases",
		token:     token,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type releaseResponse struct {
	ID int64 `json:"id"`
}

// CreateRelease implements Publisher. The record is created first, then
// every asset is attached; any failure aborts the publication with an error
// so the caller never reports a partially published release as success.
func (p *HTTPPublisher) CreateRelease(ctx context.Context, release Release) error {
	payload, err := json.Marshal(release)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode release record")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build release request")
	}
	p.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodePublishFailed, "failed to create release record")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return errors.Newf(errors.CodePublishFailed,
			"release API returned status %d for tag %s", resp.StatusCode, release.TagName)
	}

	var created releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return errors.Wrap(err, errors.CodePublishFailed, "failed to decode release response")
	}

	for _, asset := range release.Assets {
		if err := p.uploadAsset(ctx, created.ID, asset); err != nil {
			return err
		}
	}
	return nil
}

func (p *HTTPPublisher) uploadAsset(ctx context.Context, releaseID int64, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.CodePublishFailed, "failed to read release asset")
	}

	url := fmt.Sprintf("%s/%d/assets?name=%s", p.uploadURL, releaseID, filepath.Base(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build asset request")
	}
	p.authorize(req)
	req.Header.Set("Content-Type", mimetype.Detect(data).String())

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodePublishFailed, "failed to upload release asset",
			map[string]interface{}{"asset": filepath.Base(path)})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return errors.Newf(errors.CodePublishFailed,
			"asset upload returned status %d for %s", resp.StatusCode, filepath.Base(path))
	}
	return nil
}

func (p *HTTPPublisher) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// MemoryPublisher records releases in memory for tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	releases []Release

	// Err, when set, is returned from every CreateRelease call.
	Err error
}

// NewMemoryPublisher creates an in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// CreateRelease implements Publisher.
func (m *MemoryPublisher) CreateRelease(_ context.Context, release Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.releases = append(m.releases, release)
	return nil
}

// Releases returns a copy of every published release.
func (m *MemoryPublisher) Releases() []Release {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Release, len(m.releases))
	copy(out, m.releases)
	return out
}
