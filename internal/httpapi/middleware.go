package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Printf("%s %s status=%d bytes=%d req=%s from=%s dur=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
				middleware.GetReqID(r.Context()), r.RemoteAddr, time.Since(start))
		})
	}
}
