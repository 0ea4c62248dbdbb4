package middleware

import "net/http"

// Chain aplica os middlewares de rota na ordem em que são listados.
func Chain(h http.HandlerFunc, mws ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
