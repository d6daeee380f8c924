package replicate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexai/cardgen/internal/common"
)

// output is the resolved prediction result: either inline image bytes
// (delivered as a data URI) or a URL the bytes must be fetched from.
// Exactly one of the two is set.
type output struct {
	data []byte
	url  string
}

// resolveOutput classifies a prediction's raw output. Replicate models
// return either a single value or a list; the value itself is either a
// data URI carrying the image or an HTTP URL. Anything else is fatal.
func resolveOutput(raw json.RawMessage) (output, error) {
	if len(raw) == 0 {
		return output{}, fmt.Errorf("%w: empty output", common.ErrUnexpectedOutput)
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return classify(single)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return output{}, fmt.Errorf("%w: empty output list", common.ErrUnexpectedOutput)
		}
		var first string
		if err := json.Unmarshal(list[0], &first); err == nil {
			return classify(first)
		}
	}

	return output{}, fmt.Errorf("%w: %s", common.ErrUnexpectedOutput, truncate(string(raw), 200))
}

func classify(value string) (output, error) {
	switch {
	case strings.HasPrefix(value, "data:"):
		idx := strings.Index(value, ",")
		if idx < 0 {
			return output{}, fmt.Errorf("%w: malformed data URI", common.ErrUnexpectedOutput)
		}
		data, err := base64.StdEncoding.DecodeString(value[idx+1:])
		if err != nil {
			return output{}, fmt.Errorf("%w: decode data URI: %s", common.ErrUnexpectedOutput, err)
		}
		return output{data: data}, nil
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return output{url: value}, nil
	}
	return output{}, fmt.Errorf("%w: %s", common.ErrUnexpectedOutput, truncate(value, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
