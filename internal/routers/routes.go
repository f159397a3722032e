package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/digitalkookiehub/hireez/internal/handlers"
	"github.com/digitalkookiehub/hireez/internal/metrics"
	"github.com/digitalkookiehub/hireez/internal/middleware"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*handlers.CreateInterviewRequest]()).Post("/", interviewHandler.CreateInterview)
		r.Get("/", interviewHandler.ListInterviews)
		r.Get("/{interviewId}", interviewHandler.GetInterview)
		r.Post("/{interviewId}/start", interviewHandler.StartInterview)
		r.With(middleware.ValidateRequest[*handlers.ChatMessageRequest]()).Post("/{interviewId}/message", interviewHandler.SendMessage)
		r.Post("/{interviewId}/end", interviewHandler.EndInterview)
		r.With(middleware.ValidateRequest[*handlers.RecordingRequest]()).Post("/{interviewId}/recording", interviewHandler.UploadRecording)
	})
}

func WSRoutes(router *chi.Mux, wsHandler *handlers.WSHandler) {
	router.Get("/ws/interview/{interviewId}", wsHandler.HandleInterview)
}

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())
}
