package http

import (
	"net/http"

	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/rbac"
)

// audienceFor reads ?audience= and applies the caller's role: users without
// report:clinician always get the family audience.
func audienceFor(r *http.Request) (interpret.Audience, error) {
	aud := interpret.Clinician
	if q := r.URL.Query().Get("audience"); q != "" {
		a, err := interpret.ParseAudience(q)
		if err != nil {
			return "", err
		}
		aud = a
	}
	if !rbac.Can(r.Context(), "report:clinician") {
		aud = interpret.Family
	}
	return aud, nil
}
