package controllers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// rootHandler answers health checks on the root path.
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("Explore blog API")); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// SetupRootRoute sets up the root route for the application.
func SetupRootRoute(router *mux.Router) {
	router.HandleFunc("/", rootHandler).Methods("GET")
}
