package http

import (
	"net/http"

	"github.com/mind-engage/langinsight/internal/interpret"
)

// GET /api/rules?audience=
func RulesHandler(m *interpret.Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aud, err := audienceFor(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		rules := m.ForAudience(aud)
		if rules == nil {
			rules = []interpret.Rule{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"audience": aud, "rules": rules})
	}
}
