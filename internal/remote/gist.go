package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/store"
)

const (
	GistFilename    = "dauphindash-data.json"
	gistDescription = "DauphinDash Progress Data (Auto-sync)"
	githubAPI       = "https://api.github.com"
)

// Settings persists small pieces of sync state such as the gist id.
type Settings interface {
	GetDefault(key, def string) (string, error)
	Set(key, value string) error
}

// Gist stores the whole day-record store as one JSON file in a private gist.
// The gist is created on the first push and its id is kept in settings.
type Gist struct {
	token    string
	settings Settings
	opts     options
}

func NewGist(token string, settings Settings, opts ...Option) *Gist {
	return &Gist{
		token:    token,
		settings: settings,
		opts:     newOptions(githubAPI, opts),
	}
}

func (g *Gist) Name() string { return ProviderGist }

func (g *Gist) Configured() bool { return g.token != "" }

// ID returns the gist id, or "" before the first push.
func (g *Gist) ID() (string, error) {
	return g.settings.GetDefault(store.KeyGistID, "")
}

// URL is the browser link to the gist.
func (g *Gist) URL() string {
	id, err := g.ID()
	if err != nil || id == "" {
		return ""
	}
	return "https://gist.github.com/" + id
}

// TestToken reports whether GitHub accepts the token.
func (g *Gist) TestToken(ctx context.Context) (bool, error) {
	if !g.Configured() {
		return false, ErrNotConfigured
	}
	req, err := g.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return false, err
	}
	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("test token: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

type gistFile struct {
	Content string `json:"content"`
}

type gistPayload struct {
	Description string              `json:"description,omitempty"`
	Public      *bool               `json:"public,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID      string              `json:"id"`
	HTMLURL string              `json:"html_url"`
	Files   map[string]gistFile `json:"files"`
}

// FetchAll loads the store from the gist. Before the first push there is no
// gist and FetchAll returns nil.
func (g *Gist) FetchAll(ctx context.Context) (model.Store, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	id, err := g.ID()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	req, err := g.newRequest(ctx, http.MethodGet, "/gists/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load gist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("load gist", resp)
	}

	var gist gistResponse
	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return nil, fmt.Errorf("decode gist: %w", err)
	}
	file, ok := gist.Files[GistFilename]
	if !ok || file.Content == "" {
		return nil, fmt.Errorf("gist %s has no %s", id, GistFilename)
	}

	st := model.Store{}
	if err := json.Unmarshal([]byte(file.Content), &st); err != nil {
		return nil, fmt.Errorf("decode gist data: %w", err)
	}
	return st, nil
}

// PushAll writes the store to the gist, creating the gist if needed.
func (g *Gist) PushAll(ctx context.Context, st model.Store) error {
	if !g.Configured() {
		return ErrNotConfigured
	}
	content, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	files := map[string]gistFile{GistFilename: {Content: string(content)}}

	id, err := g.ID()
	if err != nil {
		return err
	}
	if id == "" {
		return g.create(ctx, files)
	}

	req, err := g.newRequest(ctx, http.MethodPatch, "/gists/"+id, gistPayload{Files: files})
	if err != nil {
		return err
	}
	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update gist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("update gist", resp)
	}
	return nil
}

func (g *Gist) create(ctx context.Context, files map[string]gistFile) error {
	public := false
	req, err := g.newRequest(ctx, http.MethodPost, "/gists", gistPayload{
		Description: gistDescription,
		Public:      &public,
		Files:       files,
	})
	if err != nil {
		return err
	}
	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create gist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return apiError("create gist", resp)
	}

	var gist gistResponse
	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return fmt.Errorf("decode created gist: %w", err)
	}
	if gist.ID == "" {
		return fmt.Errorf("create gist: response has no id")
	}
	if err := g.settings.Set(store.KeyGistID, gist.ID); err != nil {
		return fmt.Errorf("save gist id: %w", err)
	}
	return nil
}

func (g *Gist) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	req, err := jsonRequest(ctx, method, g.opts.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	return req, nil
}
