package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jason-s-yu/holdem/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts the status routes and the game socket.
func NewRouter(logger *logrus.Logger, gs *GameServer) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger), middleware.LogMiddleware(logger))

	r.HandleFunc("/health", HealthHandler(gs)).Methods(http.MethodGet)
	r.HandleFunc("/rooms", ListRoomsHandler(gs)).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}", GetRoomHandler(gs)).Methods(http.MethodGet)

	r.HandleFunc("/ws", GameWSHandler(logger, gs))
	return r
}
