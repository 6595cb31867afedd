// Package v1 exposes the question-answering pipeline over HTTP.
package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/andyjacy/aicommonplatform/internal/profile"
	"github.com/andyjacy/aicommonplatform/qa/metrics"
	"github.com/andyjacy/aicommonplatform/qa/pipeline"
	"github.com/andyjacy/aicommonplatform/store"
)

// APIV1Service holds the HTTP-facing services.
type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	Orchestrator *pipeline.Orchestrator
	Metrics      *metrics.Collector

	askLimiter *rate.Limiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, orchestrator *pipeline.Orchestrator, collector *metrics.Collector) *APIV1Service {
	s := &APIV1Service{
		Profile:      p,
		Store:        st,
		Orchestrator: orchestrator,
		Metrics:      collector,
	}
	if p.AskRateLimit > 0 {
		s.askLimiter = rate.NewLimiter(rate.Limit(p.AskRateLimit), int(p.AskRateLimit)+1)
	}
	return s
}

// Register mounts the v1 routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	group := e.Group("/api/v1")
	group.POST("/qa/ask", s.AskQuestion)
	group.GET("/qa/stats", s.GetStats)
	group.GET("/qa/:id", s.GetQuestionHistory)
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}
