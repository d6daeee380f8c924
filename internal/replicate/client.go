// Package replicate is a small client for Replicate's synchronous
// prediction API, used to generate card images with Seedream. The wire
// protocol is treated as opaque beyond what the pipeline needs: submit one
// prompt, get back one image.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexai/cardgen/internal/common"
	"github.com/alexai/cardgen/internal/logging"
)

const (
	defaultBaseURL = "https://api.replicate.com"
	defaultModel   = "bytedance/seedream-4.5"

	// Every card is generated at fixed 4K resolution.
	imageSize = "4K"
)

type Options struct {
	Token      string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     logging.Logger
}

type Client struct {
	token        string
	baseURL      string
	model        string
	httpClient   *http.Client
	logger       logging.Logger
	pollInterval time.Duration
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		token:        opts.Token,
		baseURL:      baseURL,
		model:        model,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

// Generate submits the prompt and returns the raw bytes of the generated
// image. The call blocks until the prediction reaches a terminal state or
// ctx is done; there is no retry. All failures wrap common.ErrGeneration.
func (c *Client) Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	pred, err := c.createPrediction(ctx, prompt, aspectRatio)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrGeneration, err)
	}

	for !pred.terminal() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", common.ErrGeneration, ctx.Err())
		case <-time.After(c.pollInterval):
		}

		pred, err = c.getPrediction(ctx, pred)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", common.ErrGeneration, err)
		}
	}

	if pred.Status != "succeeded" {
		msg := pred.errorText()
		if msg == "" {
			msg = "prediction " + pred.Status
		}
		return nil, fmt.Errorf("%w: %s", common.ErrGeneration, msg)
	}

	out, err := resolveOutput(pred.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrGeneration, err)
	}

	if out.data != nil {
		c.logger.Debug(ctx, "prediction returned inline image", "bytes", len(out.data))
		return out.data, nil
	}

	c.logger.Debug(ctx, "fetching prediction image", "url", out.url)
	data, err := c.fetch(ctx, out.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrGeneration, err)
	}
	return data, nil
}

func (c *Client) createPrediction(ctx context.Context, prompt, aspectRatio string) (prediction, error) {
	body, err := json.Marshal(predictionRequest{
		Input: predictionInput{
			Prompt:      prompt,
			AspectRatio: aspectRatio,
			Size:        imageSize,
		},
	})
	if err != nil {
		return prediction{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	// Hold the request open until the prediction finishes (or the server's
	// hold limit elapses, after which we poll).
	req.Header.Set("Prefer", "wait=60")

	return c.doPrediction(req)
}

func (c *Client) getPrediction(ctx context.Context, pred prediction) (prediction, error) {
	url := pred.URLs.Get
	if url == "" {
		url = fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, pred.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.doPrediction(req)
}

func (c *Client) doPrediction(req *http.Request) (prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return prediction{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return prediction{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return prediction{}, fmt.Errorf("replicate API %s: %s", resp.Status, truncate(strings.TrimSpace(string(rawBody)), 300))
	}

	var pred prediction
	if err := json.Unmarshal(rawBody, &pred); err != nil {
		return prediction{}, fmt.Errorf("decode response: %w", err)
	}
	return pred, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
