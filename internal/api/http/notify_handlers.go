package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/bt-lms/dashcore/internal/auth/middleware"
	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/notify"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

// GET /notifications
// Derived, never stored: unread messages, fresh grades and upcoming due
// dates are recomputed from current data on every call, then overlaid
// with the caller's persisted read marks. Messages are fetched live; a
// failure there degrades to the snapshot-only rules.
func ListNotificationsHandler(loader *snapshot.Loader, be backend.Client, cache snapshot.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		cols, err := loader.Collections()
		if err != nil {
			httpError(w, err)
			return
		}
		messages, err := be.ListMessages(r.Context())
		if err != nil {
			log.Printf("notifications: message fetch failed, deriving without: %v", err)
			messages = nil
		}
		subs := append([]lms.Record{}, cols.QuizAttempts...)
		subs = append(subs, cols.AssignmentSubmissions...)

		items := notify.Derive(messages, subs, cols.Assignments, actor.ID, time.Now())

		overlay := notify.NewOverlay()
		if cache != nil {
			ids, err := cache.ReadIDs(r.Context(), actor.ID)
			if err != nil {
				log.Printf("notifications: read marks unavailable: %v", err)
			}
			overlay.Seed(ids)
		}
		respondJSON(w, http.StatusOK, overlay.Apply(items))
	}
}

// POST /notifications/{notificationID}/read
func MarkNotificationReadHandler(cache snapshot.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "notificationID"))
		if id == "" {
			http.Error(w, "notificationID required", http.StatusBadRequest)
			return
		}
		if cache != nil {
			if err := cache.MarkRead(r.Context(), actor.ID, id); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /messages  { "receiverId": "...", "content": "..." }
func SendMessageHandler(be backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ReceiverID string `json:"receiverId"`
			Content    string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiverID == "" || req.Content == "" {
			http.Error(w, "receiverId and content required", http.StatusBadRequest)
			return
		}
		msg, err := be.SendMessage(r.Context(), req.ReceiverID, req.Content)
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, msg)
	}
}
