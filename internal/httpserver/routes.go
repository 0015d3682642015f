package httpserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cun0/firehose/internal/httpserver/middleware"
	"github.com/cun0/firehose/internal/logging"
)

type Config struct {
	RequestTimeout time.Duration
}

func BuildHandler(cfg Config, logger *logging.Logger, engine Engine, store EventStore) http.Handler {
	h := New(logger, engine, store)

	mux := http.NewServeMux()

	const maxEventBody = 256 << 10 // 256KB

	mux.HandleFunc("/healthz", h.Healthz)

	mux.Handle("/event",
		middleware.BodyLimit(maxEventBody)(
			http.HandlerFunc(h.PostEvent),
		),
	)

	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.Timeout(cfg.RequestTimeout)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recover(logger)(handler)

	return handler
}
