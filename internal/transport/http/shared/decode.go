package shared

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON rejects unknown fields so typos in money fields are not
// silently read as zero.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
