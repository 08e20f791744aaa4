package apperr

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Respond writes err as {"error": {"kind", "message"}} with the status
// matching its kind. Causes are never written.
func Respond(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(envelope{Error: body{Kind: kind, Message: MessageOf(err)}})
}
