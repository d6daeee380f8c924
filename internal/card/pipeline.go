package card

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alexai/cardgen/internal/filex"
	"github.com/alexai/cardgen/internal/logging"
	"github.com/alexai/cardgen/internal/prompt"
	"github.com/alexai/cardgen/internal/template"
	"github.com/alexai/cardgen/internal/watermark"
)

// Generator produces raw image bytes for a prompt. Satisfied by
// *replicate.Client.
type Generator interface {
	Generate(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// Store persists card artifacts. Satisfied by *storage.Gateway. Put
// failures are non-fatal to a run; the pipeline degrades to a local-only
// result.
type Store interface {
	PutImage(ctx context.Context, cardID string, data []byte) (string, error)
	PutMetadata(ctx context.Context, cardID string, meta *Metadata) (string, error)
	GetMetadata(ctx context.Context, cardID string) (*Metadata, error)
}

// Outcome is the result of one successful generation run. Log is populated
// on failed runs too (the caller shows it as a transcript), in which case
// every other field is zero.
type Outcome struct {
	CardID    string
	LocalPath string
	ShareLink string
	ImageURL  string
	Metadata  *Metadata
	Log       []string
}

type Options struct {
	Generator  Generator
	Store      Store
	HTTPClient *http.Client
	TempDir    string
	AppURL     string
	Logger     logging.Logger
}

// Pipeline sequences one card generation: prompt → remote generation →
// watermark → storage. Runs are independent and share no mutable state, so
// one Pipeline serves concurrent callers.
type Pipeline struct {
	generator  Generator
	store      Store
	httpClient *http.Client
	tempDir    string
	appURL     string
	logger     logging.Logger

	now   func() time.Time
	newID func() string
}

func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Pipeline{
		generator:  opts.Generator,
		store:      opts.Store,
		httpClient: httpClient,
		tempDir:    tempDir,
		appURL:     opts.AppURL,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Generate runs the full pipeline for one request. The returned Outcome
// always carries the status log; on error no artifacts are exposed.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Outcome, error) {
	var log []string
	status := func(line string) {
		log = append(log, line)
		p.logger.Info(ctx, line, "template", req.TemplateName)
	}
	fail := func(err error) (*Outcome, error) {
		log = append(log, "Error: "+err.Error())
		p.logger.Error(ctx, "card generation failed", "template", req.TemplateName, "error", err)
		return &Outcome{Log: log}, err
	}

	status("Preparing card generation...")

	tpl, err := template.Lookup(req.TemplateName)
	if err != nil {
		return fail(err)
	}

	finalPrompt := prompt.Build(tpl, prompt.Fields{
		Recipient: req.Recipient,
		Message:   req.Message,
		Date:      req.Date,
		Details:   req.Details,
	})

	status("Generating image with Seedream-4.5...")

	imageData, err := p.generator.Generate(ctx, finalPrompt, tpl.AspectRatio)
	if err != nil {
		return fail(err)
	}

	status("Image generated successfully!")

	cardID := p.newID()

	// The pre-watermark original is an intermediate; it is removed on every
	// exit path so failed runs leave nothing behind.
	originalPath, err := filex.WriteFile(p.tempDir, "card_"+cardID+"_original.jpg", imageData)
	if err != nil {
		return fail(err)
	}
	defer os.Remove(originalPath)

	status("Adding watermark...")

	marked, err := watermark.Apply(imageData)
	if err != nil {
		return fail(fmt.Errorf("watermark: %w", err))
	}
	if !marked.Applied {
		status("Watermark unavailable, keeping original image")
	}

	localPath, err := filex.WriteFile(p.tempDir, "card_"+cardID+"_watermarked.jpg", marked.Data)
	if err != nil {
		return fail(err)
	}

	status("Uploading to cloud storage...")

	imageURL, err := p.store.PutImage(ctx, cardID, marked.Data)
	if err != nil {
		status("Cloud storage unavailable, card stored locally only")
		imageURL = ""
	}

	meta := &Metadata{
		CardID:    cardID,
		Template:  req.TemplateName,
		Recipient: req.Recipient,
		Message:   req.Message,
		Date:      req.Date,
		CreatedAt: p.now(),
		ImageURL:  imageURL,
	}
	if _, err := p.store.PutMetadata(ctx, cardID, meta); err != nil && imageURL != "" {
		status("Metadata save failed, share link may not resolve")
	}

	shareLink := p.appURL + "/view?id=" + cardID

	status("Card created successfully!")

	return &Outcome{
		CardID:    cardID,
		LocalPath: localPath,
		ShareLink: shareLink,
		ImageURL:  imageURL,
		Metadata:  meta,
		Log:       log,
	}, nil
}
