package server

import (
	"net/http"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/handler"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/handler/rpc"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/middleware"
)

func NewMux(
	buildHandler *rpc.BuildHandler,
	projectHandler *rpc.ProjectHandler,
	eventsHandler *rpc.EventsHandler,
	previewHandler *handler.PreviewHandler,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	for route, h := range buildHandler.Routes() {
		mux.Handle(route, h)
	}
	for route, h := range projectHandler.Routes() {
		mux.Handle(route, h)
	}

	// Streaming & plain HTTP
	mux.HandleFunc("/ws/build-events", eventsHandler.HandleBuildEventsWS)
	mux.HandleFunc("/preview/", previewHandler.HandlePreview)
	mux.HandleFunc("/healthz", handler.HandleHealth)

	// Middleware
	return middleware.CORS(mux)
}
