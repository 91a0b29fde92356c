package api

import (
	"net/http"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/search"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// genericSearchError is the only message the UI sees for a total aggregation
// failure; per-source failures never reach the client at all.
const genericSearchError = "an error occurred while fetching jobs"

type filtersRequest struct {
	SelectedSources []string `json:"selected_sources"`
	Keywords        string   `json:"keywords"`
	Location        string   `json:"location"`
	IsRemote        bool     `json:"is_remote"`
	Country         string   `json:"country"`
	Category        string   `json:"category"`
	SalaryMin       float64  `json:"salary_min"`
	ContractType    string   `json:"contract_type"`
	ContractTime    string   `json:"contract_time"`
	SortBy          string   `json:"sort_by"`
	DateRangeDays   int      `json:"date_range_days"`
	Page            int      `json:"page"`
}

type sessionResponse struct {
	SessionID    string               `json:"session_id"`
	State        search.State         `json:"state"`
	Filters      models.SearchFilters `json:"filters"`
	Results      []models.JobPosting  `json:"results"`
	HasMorePages bool                 `json:"has_more_pages"`
	Error        string               `json:"error,omitempty"`
}

func sessionJSON(id string, snap search.Snapshot) sessionResponse {
	resp := sessionResponse{
		SessionID:    id,
		State:        snap.State,
		Filters:      snap.Filters,
		Results:      snap.Results,
		HasMorePages: snap.HasMorePages,
	}
	if resp.Results == nil {
		resp.Results = []models.JobPosting{}
	}
	if snap.State == search.StateFailed {
		resp.Error = genericSearchError
	}
	return resp
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	id, session := s.sessions.create()
	return c.JSON(http.StatusCreated, sessionJSON(id, session.Snapshot()))
}

func (s *Server) handleGetSession(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.sessions.get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown search session")
	}
	return c.JSON(http.StatusOK, sessionJSON(id, session.Snapshot()))
}

func (s *Server) handleSetFilters(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.sessions.get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown search session")
	}

	var req filtersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter payload")
	}

	sources := make([]models.Source, 0, len(req.SelectedSources))
	for _, name := range req.SelectedSources {
		src, err := models.ParseSource(name)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		sources = append(sources, src)
	}

	filters := models.SearchFilters{
		SelectedSources: sources,
		Keywords:        req.Keywords,
		Location:        req.Location,
		IsRemote:        req.IsRemote,
		Country:         req.Country,
		Category:        req.Category,
		SalaryMin:       req.SalaryMin,
		ContractType:    req.ContractType,
		ContractTime:    req.ContractTime,
		SortBy:          req.SortBy,
		DateRangeDays:   req.DateRangeDays,
		Page:            req.Page,
	}

	snap := session.SetFilters(c.Request().Context(), filters)
	return c.JSON(http.StatusOK, sessionJSON(id, snap))
}

func (s *Server) handleSetPage(c echo.Context) error {
	id := c.Param("id")
	session, ok := s.sessions.get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown search session")
	}

	var req struct {
		Page int `json:"page"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page payload")
	}
	if req.Page < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be >= 1")
	}

	snap := session.SetPage(c.Request().Context(), req.Page)
	return c.JSON(http.StatusOK, sessionJSON(id, snap))
}

func (s *Server) handleCategories(c echo.Context) error {
	country := c.QueryParam("country")
	categories := s.aggregator.Categories(c.Request().Context(), country)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func (s *Server) handleRecommendations(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recommendation payload")
	}

	job := models.JobPosting{Title: req.Title, Description: req.Description}
	courses, err := s.recommender.RecommendCourses(c.Request().Context(), job)
	if err != nil {
		// Deliberately visible and retryable, unlike per-source search
		// failures.
		s.logger.Error("course recommendation failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error":     "could not fetch course recommendations",
			"retryable": true,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

func (s *Server) handleLocale(c echo.Context) error {
	return c.JSON(http.StatusOK, s.locator.Locale(c.Request().Context(), c.RealIP()))
}
