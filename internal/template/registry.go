// Package template holds the fixed table of card templates. The set is
// compiled in and immutable; there are no mutation operations.
package template

import (
	"fmt"

	"github.com/alexai/cardgen/internal/common"
)

// Template is one occasion entry: a prompt pattern with the four
// personalization placeholders, a target aspect ratio and a short
// human-readable description for UI population.
type Template struct {
	Name        string
	Prompt      string
	AspectRatio string
	Description string
}

// displayOrder fixes the order templates are listed in, independent of map
// iteration.
var displayOrder = []string{
	"Birthday",
	"Christmas",
	"Halloween",
	"Easter",
	"Valentine's Day",
	"Thanksgiving",
	"New Year",
	"Graduation",
	"Wedding",
	"Thank You",
}

var registry = map[string]Template{
	"Birthday": {
		Name:        "Birthday",
		Prompt:      "A vibrant, celebratory birthday scene with colorful balloons, confetti, and a festive atmosphere. Warm lighting, joyful colors including pink, gold, and blue. Shot in high-quality digital photography style with bokeh effect. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Perfect for birthday celebrations with colorful and festive elements",
	},
	"Christmas": {
		Name:        "Christmas",
		Prompt:      "A cozy Christmas scene with decorated pine tree, warm fireplace, snow falling outside window, red and gold ornaments, twinkling lights. Nostalgic winter holiday atmosphere with rich textures and warm color palette. Shot in cinematic film style. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Warm holiday scene with Christmas tree and festive decorations",
	},
	"Halloween": {
		Name:        "Halloween",
		Prompt:      "A spooky yet charming Halloween scene with carved pumpkins, autumn leaves, vintage lanterns casting warm orange glow, misty atmosphere. Gothic aesthetic with orange, purple, and black color scheme. Atmospheric fog and dramatic lighting. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Spooky autumn scene with pumpkins and mysterious atmosphere",
	},
	"Easter": {
		Name:        "Easter",
		Prompt:      "A cheerful Easter scene with pastel colors, decorated eggs in basket, spring flowers blooming, soft morning sunlight, meadow setting. Gentle, dreamy photography style with soft focus. Colors: soft pink, lavender, mint green, and cream. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Springtime scene with Easter eggs and blooming flowers",
	},
	"Valentine's Day": {
		Name:        "Valentine's Day",
		Prompt:      "A romantic Valentine's Day scene with roses, soft candlelight, elegant table setting, dreamy bokeh lights in background. Rich reds and soft pinks, luxurious and intimate atmosphere. Professional photography with shallow depth of field. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Romantic scene with roses and elegant candlelit setting",
	},
	"Thanksgiving": {
		Name:        "Thanksgiving",
		Prompt:      "A warm Thanksgiving scene with harvest table, autumn decorations, pumpkins, golden wheat, warm candles, rustic wooden setting. Rich autumn colors: orange, burgundy, gold, brown. Cozy family gathering atmosphere. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Harvest scene with autumn colors and cozy atmosphere",
	},
	"New Year": {
		Name:        "New Year",
		Prompt:      "An elegant New Year's celebration scene with champagne glasses, fireworks, golden confetti, clock showing midnight, sophisticated party setting. Luxurious color palette: gold, silver, black, deep blue. Celebratory and hopeful atmosphere. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Sophisticated celebration with champagne and fireworks",
	},
	"Graduation": {
		Name:        "Graduation",
		Prompt:      "An inspiring graduation scene with cap and diploma, books, achievement symbols, bright future ahead imagery. Colors: traditional academic blue, gold, white. Uplifting and proud atmosphere with professional photography style. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Academic achievement scene with cap and diploma",
	},
	"Wedding": {
		Name:        "Wedding",
		Prompt:      "An elegant wedding scene with beautiful floral arrangements, soft romantic lighting, elegant venue details, delicate lace and fabric textures. Soft color palette: ivory, blush pink, champagne, sage green. Dreamy and romantic atmosphere. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Elegant romantic scene with flowers and soft lighting",
	},
	"Thank You": {
		Name:        "Thank You",
		Prompt:      "A warm, appreciative scene with elegant flowers in vase, handwritten note aesthetic, natural morning light through window, cozy interior setting. Soft, grateful atmosphere with cream, sage, and gold tones. {recipient} {message} {date} {details}",
		AspectRatio: "16:9",
		Description: "Warm scene expressing gratitude with flowers and elegant details",
	},
}

// Lookup returns the template for the given occasion name.
func Lookup(name string) (Template, error) {
	tpl, ok := registry[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", common.ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// All returns every template in display order.
func All() []Template {
	out := make([]Template, 0, len(displayOrder))
	for _, name := range displayOrder {
		out = append(out, registry[name])
	}
	return out
}

// Names returns the template names in display order, for UI population.
func Names() []string {
	out := make([]string, len(displayOrder))
	copy(out, displayOrder)
	return out
}
