package replicate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexai/cardgen/internal/common"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Options{Token: "r8_test", BaseURL: srv.URL})
	c.pollInterval = time.Millisecond
	return c, srv
}

func TestGenerate_OutputURL(t *testing.T) {
	image := []byte("fake-jpeg-bytes")

	mux := http.NewServeMux()
	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(image)
	})

	var srv *httptest.Server
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Prefer"), "wait")

		var req predictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a birthday scene", req.Input.Prompt)
		assert.Equal(t, "16:9", req.Input.AspectRatio)
		assert.Equal(t, "4K", req.Input.Size)

		fmt.Fprintf(w, `{"id":"p1","status":"succeeded","output":%q}`, srv.URL+"/image.jpg")
	})

	c, s := newTestClient(t, mux)
	srv = s

	got, err := c.Generate(context.Background(), "a birthday scene", "16:9")
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestGenerate_OutputDataURI(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"p1","status":"succeeded","output":[%q]}`, uri)
	})

	c, _ := newTestClient(t, mux)

	got, err := c.Generate(context.Background(), "prompt", "16:9")
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestGenerate_PollsUntilTerminal(t *testing.T) {
	polls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p2","status":"processing"}`)
	})
	mux.HandleFunc("/v1/predictions/p2", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			fmt.Fprint(w, `{"id":"p2","status":"processing"}`)
			return
		}
		uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("img"))
		fmt.Fprintf(w, `{"id":"p2","status":"succeeded","output":%q}`, uri)
	})

	c, _ := newTestClient(t, mux)

	got, err := c.Generate(context.Background(), "prompt", "16:9")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), got)
	assert.Equal(t, 3, polls)
}

func TestGenerate_PredictionFailed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p3","status":"failed","error":"NSFW content detected"}`)
	})

	c, _ := newTestClient(t, mux)

	_, err := c.Generate(context.Background(), "prompt", "16:9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGeneration))
	assert.Contains(t, err.Error(), "NSFW content detected")
}

func TestGenerate_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid token"}`, http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux)

	_, err := c.Generate(context.Background(), "prompt", "16:9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGeneration))
	assert.Contains(t, err.Error(), "401")
}

func TestGenerate_UnexpectedOutputShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/bytedance/seedream-4.5/predictions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p4","status":"succeeded","output":{"weird":true}}`)
	})

	c, _ := newTestClient(t, mux)

	_, err := c.Generate(context.Background(), "prompt", "16:9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGeneration))
	assert.True(t, errors.Is(err, common.ErrUnexpectedOutput))
}

func TestResolveOutput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantURL string
		wantErr bool
	}{
		{name: "url string", raw: `"https://cdn.example.com/a.jpg"`, wantURL: "https://cdn.example.com/a.jpg"},
		{name: "url list", raw: `["http://cdn.example.com/b.jpg"]`, wantURL: "http://cdn.example.com/b.jpg"},
		{name: "empty", raw: ``, wantErr: true},
		{name: "empty list", raw: `[]`, wantErr: true},
		{name: "number", raw: `42`, wantErr: true},
		{name: "plain string", raw: `"not a url"`, wantErr: true},
		{name: "malformed data uri", raw: `"data:image/jpeg;base64"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := resolveOutput(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrUnexpectedOutput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, out.url)
		})
	}
}
