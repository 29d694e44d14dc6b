package pkg

import (
	"mime"
	"net/http"
)

// IsJSONRequest accepts "application/json" with or without parameters.
func IsJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == ContentType.JSON
}
