package card

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/alexai/cardgen/internal/filex"
)

// ViewError is the structured error object the view flow returns to the
// caller instead of raising. Its JSON shape ({"error": ...}) crosses the
// user boundary as-is.
type ViewError struct {
	Error string `json:"error"`
}

// Lookup fetches a card's metadata record without touching its image.
func (p *Pipeline) Lookup(ctx context.Context, cardID string) (*Metadata, error) {
	return p.store.GetMetadata(ctx, cardID)
}

// View resolves a shared card by identifier: fetches its metadata and, when
// the record references a stored image, downloads it to a local temp file.
// Missing input and missing records surface as a ViewError, never as an
// error value. A failed image download still returns the metadata.
func (p *Pipeline) View(ctx context.Context, cardID string) (string, *Metadata, *ViewError) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return "", nil, &ViewError{Error: "Please enter a card ID"}
	}

	meta, err := p.store.GetMetadata(ctx, cardID)
	if err != nil {
		p.logger.Warn(ctx, "card lookup failed", "card_id", cardID, "error", err)
		return "", nil, &ViewError{Error: "Card not found"}
	}

	if meta.ImageURL == "" {
		return "", meta, nil
	}

	localPath, err := p.downloadImage(ctx, cardID, meta.ImageURL)
	if err != nil {
		p.logger.Warn(ctx, "card image download failed", "card_id", cardID, "error", err)
		return "", meta, nil
	}
	return localPath, meta, nil
}

func (p *Pipeline) downloadImage(ctx context.Context, cardID, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return filex.WriteFile(p.tempDir, "view_"+cardID+".jpg", data)
}

type httpStatusError struct {
	status string
}

func (e *httpStatusError) Error() string {
	return "unexpected status " + e.status
}
