package controller

import (
	"encoding/base64"
	"net/http"
)

const flashCookie = "flash"

// One-shot notification shown on the next rendered page, the server-side
// counterpart of the original alert() calls.
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:  flashCookie,
		Value: base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:  "/",
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
