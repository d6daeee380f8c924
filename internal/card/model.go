// Package card holds the card data model and the generation pipeline that
// orchestrates prompt building, image generation, watermarking and storage.
package card

import "time"

// Request carries the caller's template choice and personalization text.
// All personalization fields are optional.
type Request struct {
	TemplateName string `json:"template"`
	Recipient    string `json:"recipient,omitempty"`
	Message      string `json:"message,omitempty"`
	Date         string `json:"date,omitempty"`
	Details      string `json:"details,omitempty"`
}

// Metadata is the durable record stored next to each card image. CardID is
// the sole external identifier and matches the object-storage keys
// (cards/{id}.jpg, metadata/{id}.json). Records are never mutated after
// creation.
type Metadata struct {
	CardID    string    `json:"card_id"`
	Template  string    `json:"template"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	ImageURL  string    `json:"image_url"`
}
