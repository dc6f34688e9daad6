package handler

import (
	"context"
	"log/slog"
	"net/http"

	mw "github.com/kiranshivaraju/callcoach/internal/api/middleware"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/coach"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// FrameworkAnalyzer runs multi-call, multi-framework analysis.
type FrameworkAnalyzer interface {
	AnalyzeCallsFramework(ctx context.Context, req coach.AnalyzeRequest) (*models.AggregateAnalysis, error)
}

type analyzeBody struct {
	CallIDs                 []string `json:"callIds"                 validate:"required,min=1,max=50,dive,required,max=128"`
	Frameworks              []string `json:"frameworks"              validate:"required,min=1,max=20,dive,required"`
	IncludeParticipantRoles bool     `json:"includeParticipantRoles"`
}

// NewAnalyzeFrameworksHandler returns an http.HandlerFunc for POST /api/v1/analysis/frameworks.
func NewAnalyzeFrameworksHandler(svc FrameworkAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body analyzeBody
		if !decode(w, r, &body) {
			return
		}
		result, err := svc.AnalyzeCallsFramework(r.Context(), coach.AnalyzeRequest{
			CallIDs:                 body.CallIDs,
			Frameworks:              body.Frameworks,
			IncludeParticipantRoles: body.IncludeParticipantRoles,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("framework analysis completed",
			"request_id", mw.GetRequestID(r.Context()),
			"analysis_id", result.RequestID,
			"calls", len(body.CallIDs),
			"frameworks", len(body.Frameworks),
			"failed_units", len(result.FailedUnits),
		)
		response.JSON(w, result)
	}
}
