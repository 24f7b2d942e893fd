// Package github lists and downloads files from public GitHub repositories.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"candlestore/pkg/candle"
)

// Content is one entry of a repository directory listing.
type Content struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (c Content) IsDir() bool { return c.Type == "dir" }

// IsCSV reports whether c is a file with a .csv suffix, ignoring case.
func (c Content) IsCSV() bool {
	return c.Type == "file" && strings.HasSuffix(strings.ToLower(c.Name), ".csv")
}

// ParseRepoURL extracts owner and repository name from a URL such as
// https://github.com/owner/repo, github.com/owner/repo/tree/main or owner/repo.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "/")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", candle.InvalidInput("invalid GitHub URL %q, expected https://github.com/username/repo", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// ListContents lists the directory at path ("" for the root) on branch.
func (c *Client) ListContents(ctx context.Context, owner, repo, path, branch string) ([]Content, error) {
	if branch == "" {
		branch = DefaultBranch
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), escapePath(path), url.QueryEscape(branch))

	res, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GitHub API error: %s, make sure the repository is public and the path %q exists",
			candle.ErrNetwork, res.Status, path)
	}

	var contents []Content
	if err := json.NewDecoder(res.Body).Decode(&contents); err != nil {
		return nil, fmt.Errorf("%w: decoding GitHub contents: %v", candle.ErrNetwork, err)
	}
	return contents, nil
}

// Download fetches the raw bytes behind a download_url.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	res, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download file: %s", candle.ErrNetwork, res.Status)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading file content: %v", candle.ErrNetwork, err)
	}
	return b, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: performing request: %w", candle.ErrNetwork, err)
	}
	return res, nil
}

func escapePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
