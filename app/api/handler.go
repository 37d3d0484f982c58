package api

import (
	"context"
	"errors"
	"fmt"

	"claimrag/app/agent"
	"claimrag/types"

	"github.com/gofiber/fiber/v2"
)

// Analyzer is the query pipeline as the API sees it.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (*types.AnalysisResponse, error)
}

type AnalyzeHandler struct {
	analyzer Analyzer
}

func NewAnalyzeHandler(analyzer Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
	}
}

// HandleAnalyze validates the query and runs the pipeline. Exhausted
// completion retries surface as a labeled 503; any other pipeline failure
// becomes a generic labeled 500. Empty queries never reach the pipeline.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	resp, err := h.analyzer.Analyze(c.UserContext(), params.Query)
	if err != nil {
		if errors.Is(err, agent.ErrUnavailable) {
			return NewError(fiber.StatusServiceUnavailable,
				"Service unavailable after multiple attempts. Please try again later.")
		}
		return NewError(fiber.StatusInternalServerError, fmt.Sprintf("An error occurred: %s", err))
	}

	return c.JSON(resp)
}
