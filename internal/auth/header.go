package auth

import (
	"net/http"
	"time"
)

// AuthorizationHeader is the request header the signed value is sent in.
const AuthorizationHeader = "Authorization"

// Header is one signed Authorization value. A Header is never modified after
// it is handed out; the source replaces it wholesale.
type Header struct {
	Value    string
	IssuedAt time.Time
	UseCount int
}

// Apply sets the Authorization header on req.
func (h Header) Apply(req *http.Request) {
	req.Header.Set(AuthorizationHeader, h.Value)
}
