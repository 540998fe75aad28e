package api

import "net/http"

// httpStatusFor maps the two error kinds spec §6/§7 call out as genuine
// HTTP-level failures to a status code. Every other error kind is
// reported in-band with a 200 and responseType=="error" — the orchestrator
// never raises an unhandled exception to this layer.
func httpStatusFor(errorType string) (int, bool) {
	switch errorType {
	case "invalid-query":
		return http.StatusBadRequest, true
	case "campaign-not-found":
		return http.StatusNotFound, true
	default:
		return 0, false
	}
}
