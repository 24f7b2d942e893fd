package github_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"candlestore/pkg/candle"
	"candlestore/pkg/github"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseRepoURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		owner string
		repo  string
		err   bool
	}{
		{in: "https://github.com/acme/fx-data", owner: "acme", repo: "fx-data"},
		{in: "https://github.com/acme/fx-data/", owner: "acme", repo: "fx-data"},
		{in: "http://github.com/acme/fx-data.git", owner: "acme", repo: "fx-data"},
		{in: "github.com/acme/fx-data/tree/main/EURUSD", owner: "acme", repo: "fx-data"},
		{in: "acme/fx-data", owner: "acme", repo: "fx-data"},
		{in: "https://github.com/acme", err: true},
		{in: "", err: true},
	}

	for _, tt := range tests {
		owner, repo, err := github.ParseRepoURL(tt.in)
		if tt.err {
			require.ErrorIs(t, err, candle.ErrInvalidInput, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.owner, owner, tt.in)
		require.Equal(t, tt.repo, repo, tt.in)
	}
}

func TestListContents(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/repos/acme/fx-data/contents/EURUSD", req.URL.Path)
			require.Equal(t, "dev", req.URL.Query().Get("ref"))
			require.Equal(t, "application/vnd.github.v3+json", req.Header.Get("Accept"))

			buffer := &bytes.Buffer{}
			require.NoError(t, json.NewEncoder(buffer).Encode([]map[string]any{
				{"name": "M1.csv", "path": "EURUSD/M1.csv", "type": "file", "download_url": "https://raw.example/M1.csv"},
				{"name": "notes", "path": "EURUSD/notes", "type": "dir", "download_url": nil},
				{"name": "H1.CSV", "path": "EURUSD/H1.CSV", "type": "file", "download_url": "https://raw.example/H1.CSV"},
			}))
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(buffer)}, nil
		}).
		Times(1)

	client := github.NewClient(github.WithHTTPClient(httpClient), github.WithBaseURL("https://api.example"))

	// Act
	contents, err := client.ListContents(t.Context(), "acme", "fx-data", "EURUSD", "dev")
	require.NoError(t, err)

	// Assert
	require.Len(t, contents, 3)
	require.True(t, contents[0].IsCSV())
	require.True(t, contents[1].IsDir())
	require.False(t, contents[1].IsCSV())
	require.True(t, contents[2].IsCSV())
	require.Empty(t, contents[1].DownloadURL)
}

func TestListContents_DefaultBranchAndRoot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/repos/acme/fx-data/contents/", req.URL.Path)
			require.Equal(t, "main", req.URL.Query().Get("ref"))
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("[]"))}, nil
		}).
		Times(1)

	client := github.NewClient(github.WithHTTPClient(httpClient))
	contents, err := client.ListContents(t.Context(), "acme", "fx-data", "", "")
	require.NoError(t, err)
	require.Empty(t, contents)
}

func TestListContents_ErrUnexpectedStatusCode(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader(`{"message":"Not Found"}`)),
		}, nil).
		Times(1)

	client := github.NewClient(github.WithHTTPClient(httpClient))
	contents, err := client.ListContents(t.Context(), "acme", "missing", "", "main")
	require.ErrorIs(t, err, candle.ErrNetwork)
	require.Contains(t, err.Error(), "404 Not Found")
	require.Nil(t, contents)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	gomock.InOrder(
		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				require.Equal(t, "https://raw.example/M1.csv", req.URL.String())
				require.Equal(t, "candlestore-test", req.Header.Get("User-Agent"))
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("time,o,h,l,c\n1,2,3,4,5\n"))}, nil
			}),
		httpClient.EXPECT().
			Do(gomock.Any()).
			Return(nil, fmt.Errorf("connection reset")),
	)

	client := github.NewClient(
		github.WithHTTPClient(httpClient),
		github.WithHeader(http.Header{"User-Agent": []string{"candlestore-test"}}),
	)

	b, err := client.Download(t.Context(), "https://raw.example/M1.csv")
	require.NoError(t, err)
	require.Equal(t, "time,o,h,l,c\n1,2,3,4,5\n", string(b))

	_, err = client.Download(t.Context(), "https://raw.example/H1.csv")
	require.ErrorIs(t, err, candle.ErrNetwork)
}
