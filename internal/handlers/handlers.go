// Package handlers exposes the card pipeline over HTTP: a small JSON API
// for generation and template listing, plus the /view share-link target.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexai/cardgen/internal/card"
	"github.com/alexai/cardgen/internal/common"
	"github.com/alexai/cardgen/internal/logging"
	"github.com/alexai/cardgen/internal/template"
)

// CardService is the pipeline surface the handlers need. Satisfied by
// *card.Pipeline.
type CardService interface {
	Generate(ctx context.Context, req card.Request) (*card.Outcome, error)
	View(ctx context.Context, cardID string) (string, *card.Metadata, *card.ViewError)
	Lookup(ctx context.Context, cardID string) (*card.Metadata, error)
}

type Handler struct {
	cards  CardService
	logger logging.Logger
}

func New(cards CardService, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{cards: cards, logger: logger}
}

// Router wires up all routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/templates", h.ListTemplates).Methods(http.MethodGet)
	r.HandleFunc("/api/cards", h.GenerateCard).Methods(http.MethodPost)
	r.HandleFunc("/api/cards/{id}", h.GetCard).Methods(http.MethodGet)
	r.HandleFunc("/view", h.ViewCard).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type templateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AspectRatio string `json:"aspect_ratio"`
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	all := template.All()
	out := make([]templateInfo, 0, len(all))
	for _, tpl := range all {
		out = append(out, templateInfo{
			Name:        tpl.Name,
			Description: tpl.Description,
			AspectRatio: tpl.AspectRatio,
		})
	}
	h.writeJSON(r.Context(), w, http.StatusOK, out)
}

type generateResponse struct {
	CardID    string   `json:"card_id,omitempty"`
	ShareLink string   `json:"share_link,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	LocalPath string   `json:"local_path,omitempty"`
	Status    []string `json:"status"`
	Error     string   `json:"error,omitempty"`
}

func (h *Handler) GenerateCard(w http.ResponseWriter, r *http.Request) {
	var req card.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(r.Context(), w, http.StatusBadRequest, generateResponse{Error: "invalid request body"})
		return
	}

	out, err := h.cards.Generate(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, common.ErrTemplateNotFound) {
			status = http.StatusBadRequest
		}
		h.writeJSON(r.Context(), w, status, generateResponse{Error: err.Error(), Status: out.Log})
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, generateResponse{
		CardID:    out.CardID,
		ShareLink: out.ShareLink,
		ImageURL:  out.ImageURL,
		LocalPath: out.LocalPath,
		Status:    out.Log,
	})
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := mux.Vars(r)["id"]

	meta, err := h.cards.Lookup(r.Context(), cardID)
	if err != nil {
		h.writeJSON(r.Context(), w, http.StatusNotFound, card.ViewError{Error: "Card not found"})
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, meta)
}

// ViewCard is the share-link target. When the card's image is resolvable it
// is served directly; a record without a stored image answers with its
// metadata instead.
func (h *Handler) ViewCard(w http.ResponseWriter, r *http.Request) {
	cardID := r.URL.Query().Get("id")

	localPath, meta, verr := h.cards.View(r.Context(), cardID)
	if verr != nil {
		status := http.StatusNotFound
		if cardID == "" {
			status = http.StatusBadRequest
		}
		h.writeJSON(r.Context(), w, status, verr)
		return
	}

	if localPath != "" {
		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, localPath)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, meta)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(ctx, "write response failed", "error", err)
	}
}
