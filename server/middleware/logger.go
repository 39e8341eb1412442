package middleware

// Logger mirrors walletserver/middleware.Logger's request-timing log line.

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithField("duration", time.Since(start)).Infof("%s %s", r.Method, r.RequestURI)
	})
}
