package positions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

// ContextFormIDKey is the key of the document id inside the page context.
const ContextFormIDKey = "form.id"

// ParseContextParam extracts the JSON "context" query parameter from a page
// URL (or a bare query string) and decodes it into a flat map. Values are
// coerced to strings.
func ParseContextParam(raw string) (map[string]string, error) {
	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query string: %w", err)
	}
	encoded := values.Get("context")
	if encoded == "" {
		return nil, fmt.Errorf("no context parameter in %q", raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		return nil, NewParseError("context parameter is not a JSON object", err)
	}

	out := make(map[string]string, len(decoded))
	for k, v := range decoded {
		out[k] = cast.ToString(v)
	}
	return out, nil
}

// FormIDFromURL returns the document id carried by a page URL's context.
func FormIDFromURL(raw string) (string, error) {
	ctx, err := ParseContextParam(raw)
	if err != nil {
		return "", err
	}
	id := ctx[ContextFormIDKey]
	if id == "" {
		return "", fmt.Errorf("context has no %s", ContextFormIDKey)
	}
	return id, nil
}
