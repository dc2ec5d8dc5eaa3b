package request

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionParam is the query parameter carrying a viewer session id.
const SessionParam = "session"

// ParseSessionID parses a viewer session id. Only canonical UUIDs are accepted.
func ParseSessionID(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return "", false
	}

	return id.String(), true
}

// SessionIDFromRequest reads the session id from the query or, for htmx requests,
// from the HX-Current-URL header. present reports whether any value was supplied,
// so callers can tell a missing id from a malformed one.
func SessionIDFromRequest(r *http.Request) (id string, present bool, ok bool) {
	if raw := r.URL.Query().Get(SessionParam); strings.TrimSpace(raw) != "" {
		id, ok = ParseSessionID(raw)
		return id, true, ok
	}

	currentURL := strings.TrimSpace(r.Header.Get("HX-Current-URL"))
	if currentURL == "" {
		return "", false, false
	}

	parsed, err := url.Parse(currentURL)
	if err != nil {
		log.Ctx(r.Context()).
			Debug().
			Err(err).
			Str("hx_current_url", currentURL).
			Msg("Failed to parse HX-Current-URL")
		return "", false, false
	}

	raw := parsed.Query().Get(SessionParam)
	if strings.TrimSpace(raw) == "" {
		return "", false, false
	}
	id, ok = ParseSessionID(raw)
	return id, true, ok
}
