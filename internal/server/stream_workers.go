//go:build js && wasm

package server

import "net/http"

func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotImplemented, "streaming is not supported in worker builds")
}
