// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import "strings"

// Challenge pages served by the portal's anti-automation layer share a
// structural fingerprint: a script that sets a session cookie, an
// obfuscated bootstrap payload, and a reference back to the endpoint
// that was originally requested. All three markers must be present;
// any one of them alone occurs in legitimate pages.
const (
	cookieMarker = "document.cookie"

	scriptMarkerCharCode = "String.fromCharCode"
	scriptMarkerEval     = "eval(function"
)

// IsChallenge reports whether body is an anti-automation challenge page
// for the request identified by requestPath (path plus query, as sent).
func IsChallenge(body, requestPath string) bool {
	if !strings.Contains(body, cookieMarker) {
		return false
	}
	if !strings.Contains(body, scriptMarkerCharCode) && !strings.Contains(body, scriptMarkerEval) {
		return false
	}
	return requestPath != "" && strings.Contains(body, requestPath)
}
