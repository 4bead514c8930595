package problem

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/problem+json"
	baseTypeURL = "https://errors.retail-ledger.dev/"
)

// Details represents RFC 7807 Problem Details. Kind is an extension member
// carrying the ledger error kind (validation, not_found, auth, state).
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	RequestID string `json:"request_id"`
	Kind      string `json:"kind,omitempty"`
}

func Type(slug string) string {
	return baseTypeURL + slug
}

// Write sends an RFC 7807 problem without a ledger kind.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	WriteKind(w, r, status, problemType, title, detail, "")
}

// WriteKind sends an RFC 7807 problem tagged with a ledger error kind.
func WriteKind(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail, kind string) {
	if title == "" {
		title = http.StatusText(status)
	}
	if problemType == "" {
		problemType = "about:blank"
	}
	d := Details{
		Type:      problemType,
		Title:     title,
		Status:    status,
		Detail:    detail,
		RequestID: w.Header().Get("X-Trace-ID"),
		Kind:      kind,
	}
	if r != nil {
		d.Instance = r.URL.Path
		if d.RequestID == "" {
			d.RequestID = r.Header.Get("X-Trace-ID")
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(d)
}
