package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/landmark/pkg/api/middleware"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/gorilla/mux"
)

// Landmark is the JSON form of a stored landmark.
type Landmark struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func HandleListLandmarks(landmarks store.LandmarkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		names, err := landmarks.List(r.Context(), userID)
		if err != nil {
			log.Error("failed to list landmarks: %v", err)
			http.Error(w, "Failed to list landmarks", http.StatusInternalServerError)
			return
		}

		result := make([]Landmark, 0, len(names))
		for _, name := range names {
			pos, err := landmarks.Get(r.Context(), userID, name)
			if err != nil {
				if store.IsNotFound(err) {
					// deleted since List
					continue
				}
				log.Error("failed to get landmark %s: %v", name, err)
				http.Error(w, "Failed to get landmark", http.StatusInternalServerError)
				return
			}
			result = append(result, Landmark{Name: name, X: pos.X, Y: pos.Y})
		}

		writeJSON(w, result)
	}
}

func HandleGetLandmark(landmarks store.LandmarkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}
		name := mux.Vars(r)["name"]

		pos, err := landmarks.Get(r.Context(), userID, name)
		if err != nil {
			if store.IsNotFound(err) {
				http.Error(w, "Landmark not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get landmark: %v", err)
			http.Error(w, "Failed to get landmark", http.StatusInternalServerError)
			return
		}

		writeJSON(w, Landmark{Name: name, X: pos.X, Y: pos.Y})
	}
}

func HandleDeleteLandmark(landmarks store.LandmarkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}
		name := mux.Vars(r)["name"]

		if err := landmarks.Delete(r.Context(), userID, name); err != nil {
			if store.IsNotFound(err) {
				http.Error(w, "Landmark not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete landmark: %v", err)
			http.Error(w, "Failed to delete landmark", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleGetLastDeath(deaths store.DeathStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		pos, err := deaths.GetLastDeath(r.Context(), userID)
		if err != nil {
			if store.IsNotFound(err) {
				http.Error(w, "No death recorded", http.StatusNotFound)
				return
			}
			log.Error("failed to get last death: %v", err)
			http.Error(w, "Failed to get last death", http.StatusInternalServerError)
			return
		}

		writeJSON(w, pos)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
