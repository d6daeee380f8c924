// Package prompt assembles the final generation prompt from a card template
// and the user-supplied personalization fields.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alexai/cardgen/internal/template"
)

// Fields are the four optional personalization inputs. Empty fields render
// as empty segments in the final prompt, never as placeholder text.
type Fields struct {
	Recipient string
	Message   string
	Date      string
	Details   string
}

// Build substitutes the personalization sentences into the template's
// placeholder positions and normalizes whitespace. Templates are written as
// single-line literals here, but user input may contain newlines, so every
// whitespace run is collapsed to a single space.
//
// User text is embedded verbatim; quote characters are not escaped.
func Build(tpl template.Template, f Fields) string {
	var recipient, message, date, details string

	if f.Recipient != "" {
		recipient = fmt.Sprintf("The card should be made out to %s.", f.Recipient)
	}
	if f.Message != "" {
		message = fmt.Sprintf("The card should include the message '%s'.", f.Message)
	}
	if f.Date != "" {
		date = fmt.Sprintf("The date '%s' should be displayed.", f.Date)
	}
	if f.Details != "" {
		details = fmt.Sprintf("Include these elements: %s.", f.Details)
	}

	r := strings.NewReplacer(
		"{recipient}", recipient,
		"{message}", message,
		"{date}", date,
		"{details}", details,
	)

	return strings.Join(strings.Fields(r.Replace(tpl.Prompt)), " ")
}
