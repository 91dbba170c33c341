// Package server exposes the search engine and answer generation over HTTP.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deaguilarg/seguros-rag/internal/usecase"
)

// Server wires the use cases into an echo application. The engine is loaded
// once at startup and shared read-only by all request handlers.
type Server struct {
	engine   *usecase.SearchEngine
	answerer *usecase.AnswerUseCase
	topK     int
}

// New creates a server. answerer may be nil; /api/ask then responds 503.
func New(engine *usecase.SearchEngine, answerer *usecase.AnswerUseCase, topK int) *Server {
	return &Server{engine: engine, answerer: answerer, topK: topK}
}

// Echo builds the routed echo instance.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/healthz", s.health)
	e.POST("/api/search", s.search)
	e.POST("/api/ask", s.ask)
	return e
}

// Start runs the server on addr until it fails or is shut down.
func (s *Server) Start(addr string) error {
	return s.Echo().Start(addr)
}

type searchRequest struct {
	Query   string              `json:"query"`
	TopK    int                 `json:"top_k"`
	Filters map[string][]string `json:"filters"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"vectors": s.engine.Len(),
	})
}

func (s *Server) search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.topK
	}

	results, err := s.engine.Search(c.Request().Context(), req.Query, topK, req.Filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"query":   req.Query,
		"results": results,
	})
}

func (s *Server) ask(c echo.Context) error {
	if s.answerer == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "answer generation is not configured"})
	}

	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}

	answer, err := s.answerer.Ask(c.Request().Context(), req.Query, req.Filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, answer)
}
