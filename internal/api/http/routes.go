package http

import (
	"github.com/go-chi/chi/v5"

	authmw "github.com/bt-lms/dashcore/internal/auth/middleware"
	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/session"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

type Deps struct {
	Loader   *snapshot.Loader
	Backend  *backend.HTTPClient // login/logout and session context
	Client   backend.Client      // data calls; same object as Backend in production
	Cache    snapshot.Cache      // nil disables persistence features
	Sessions *session.Manager
	Grader   *grading.Grader

	AdminUser     string
	AdminPassHash string
}

// Mount wires the dashboard facade onto the router.
func Mount(r chi.Router, d Deps) {
	r.Post("/auth/login", LoginHandler(d.Backend))
	r.Post("/auth/register", RegisterHandler(d.Backend))
	r.Post("/auth/logout", LogoutHandler(d.Backend))

	// Bearer-authenticated surface. The snapshot's user record, when
	// present, is authoritative for the caller's role.
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.BearerMiddleware())
		pr.Use(authmw.AttachRoleFromSnapshot(d.Loader))

		pr.Get("/overview", OverviewHandler(d.Loader))
		pr.Get("/courses", ListCoursesHandler(d.Loader))
		pr.Get("/modules", ListModulesHandler(d.Loader))
		pr.Get("/lessons", ListLessonsHandler(d.Loader))
		pr.Get("/assessments", ListAssessmentsHandler(d.Loader))

		pr.With(authmw.Require("roster:view")).
			Get("/assessments/{kind}/{assessmentID}/roster", RosterHandler(d.Loader))
		pr.With(authmw.Require("grade:write")).
			Post("/assessments/{kind}/{assessmentID}/grade", SubmitGradeHandler(d.Loader, d.Grader))
		pr.With(authmw.Require("roster:view-own")).
			Get("/submissions/own", OwnSubmissionsHandler(d.Loader))

		pr.With(authmw.Require("session:take")).
			Post("/sessions", StartSessionHandler(d.Loader, d.Client, d.Sessions))
		pr.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Use(authmw.Require("session:take"))
			sr.Get("/", GetSessionHandler(d.Sessions))
			sr.Post("/answers", AnswerHandler(d.Sessions))
			sr.Post("/submit", SubmitSessionHandler(d.Loader, d.Sessions))
			sr.Post("/abort", AbortSessionHandler(d.Sessions))
		})

		pr.Get("/notifications", ListNotificationsHandler(d.Loader, d.Client, d.Cache))
		pr.Post("/notifications/{notificationID}/read", MarkNotificationReadHandler(d.Cache))

		pr.With(authmw.Require("message:send")).
			Post("/messages", SendMessageHandler(d.Client))

		pr.Post("/refresh", RefreshHandler(d.Loader))
	})

	// Operational endpoints, usable even when the backend is down.
	r.Group(func(ar chi.Router) {
		ar.Use(AdminBasicAuth(d.AdminUser, d.AdminPassHash))
		ar.Post("/admin/cache/purge", PurgeCacheHandler(d.Cache))
		ar.Post("/admin/snapshot/refresh", RefreshHandler(d.Loader))
	})
}
