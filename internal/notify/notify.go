// Package notify recomputes the transient notification list from the
// current snapshot. There is no server-side notification store: every
// relevant data change rebuilds the list wholesale, and read state lives
// in a client-side overlay keyed by stable notification id.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
}

// Namespace for derived notification ids. Ids are hashed from the source
// record's key so the same notification keeps the same id across
// recomputations and the read overlay survives.
var idNamespace = uuid.MustParse("9f2c1a47-3e5b-4a6d-8c10-5d2f7b9e0c31")

func itemID(key string) string {
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Derive recomputes the notification list for one actor. Pure and total:
// a nil input collection yields no items from that rule but never
// suppresses the others.
func Derive(messages, submissions, assignments []lms.Record, actorID string, now time.Time) []Item {
	var items []Item
	items = append(items, unreadMessageBundle(messages, actorID, now)...)
	items = append(items, gradedSubmissions(submissions, actorID)...)
	items = append(items, upcomingAssignments(assignments, now)...)
	return items
}

// Rule 1: one bundled item summarizing the unread message count.
func unreadMessageBundle(messages []lms.Record, actorID string, now time.Time) []Item {
	unread := 0
	for _, m := range messages {
		recv, ok := receiverID(m)
		if !ok || recv != actorID {
			continue
		}
		if !m.Bool("read", false) {
			unread++
		}
	}
	if unread == 0 {
		return nil
	}
	return []Item{{
		ID:        itemID("messages|" + actorID),
		Title:     "Unread messages",
		Message:   fmt.Sprintf("You have %d unread message(s)", unread),
		Kind:      KindInfo,
		Timestamp: now,
	}}
}

// Rule 2: one item per submission of the actor's that has been graded.
func gradedSubmissions(submissions []lms.Record, actorID string) []Item {
	var items []Item
	for _, s := range submissions {
		sid, ok := identity.ResolveRef(s, identity.KindStudent)
		if !ok || sid != actorID {
			continue
		}
		score, hasScore := s.Float("grade")
		if !hasScore {
			score, hasScore = s.Float("score")
		}
		if !hasScore {
			continue
		}
		subID, ok := identity.SelfID(s)
		if !ok {
			continue
		}
		ts, _ := grading.SubmittedAt(s)
		items = append(items, Item{
			ID:        itemID("graded|" + subID),
			Title:     "Work graded",
			Message:   fmt.Sprintf("A submission was graded: %.0f", score),
			Kind:      KindSuccess,
			Timestamp: ts,
		})
	}
	return items
}

// Rule 3: one item per assignment still open and due in the future.
func upcomingAssignments(assignments []lms.Record, now time.Time) []Item {
	var items []Item
	for _, a := range assignments {
		if !a.Bool("isActive", true) {
			continue
		}
		due, ok := grading.ParseWhen(a["dueDate"])
		if !ok || !due.After(now) {
			continue
		}
		aid, ok := identity.SelfID(a)
		if !ok {
			continue
		}
		title := a.String("title")
		if title == "" {
			title = "Assignment"
		}
		items = append(items, Item{
			ID:        itemID("due|" + aid),
			Title:     "Assignment due",
			Message:   fmt.Sprintf("%s is due %s", title, due.Format("Jan 2, 2006")),
			Kind:      KindWarning,
			Timestamp: due,
		})
	}
	return items
}

func receiverID(m lms.Record) (string, bool) {
	if obj, ok := m["receiver"].(map[string]any); ok {
		if id, ok := lms.CanonicalID(obj["id"]); ok {
			return id, true
		}
	}
	return lms.CanonicalID(m["receiverId"])
}
