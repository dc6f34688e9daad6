package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/calls"
	"github.com/kiranshivaraju/callcoach/internal/coach"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// CallService is the subset of the coach service the call handlers use.
type CallService interface {
	SearchCalls(ctx context.Context, req coach.SearchRequest) (*calls.SearchResult, error)
	SelectCall(ctx context.Context, req coach.SelectRequest) (*calls.Match, error)
	GetCallDetails(ctx context.Context, callID string) (*models.CallDetails, error)
}

type searchBody struct {
	CustomerName string `json:"customerName" validate:"required,max=200"`
	FromDate     string `json:"fromDate"     validate:"max=64"`
	ToDate       string `json:"toDate"       validate:"max=64"`
	DateRange    string `json:"dateRange"    validate:"max=64"`
}

func (b searchBody) request() coach.SearchRequest {
	return coach.SearchRequest{
		CustomerName: b.CustomerName,
		FromDate:     b.FromDate,
		ToDate:       b.ToDate,
		DateRange:    b.DateRange,
	}
}

// NewSearchCallsHandler returns an http.HandlerFunc for POST /api/v1/calls/search.
func NewSearchCallsHandler(svc CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body searchBody
		if !decode(w, r, &body) {
			return
		}
		res, err := svc.SearchCalls(r.Context(), body.request())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, res)
	}
}

type selectBody struct {
	CallID          string `json:"callId"          validate:"required_without=SelectionNumber,max=128"`
	SelectionNumber int    `json:"selectionNumber" validate:"omitempty,min=1"`
	CustomerName    string `json:"customerName"    validate:"required_with=SelectionNumber,max=200"`
	FromDate        string `json:"fromDate"        validate:"max=64"`
	ToDate          string `json:"toDate"          validate:"max=64"`
	DateRange       string `json:"dateRange"       validate:"max=64"`
}

// NewSelectCallHandler returns an http.HandlerFunc for POST /api/v1/calls/select.
func NewSelectCallHandler(svc CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body selectBody
		if !decode(w, r, &body) {
			return
		}
		m, err := svc.SelectCall(r.Context(), coach.SelectRequest{
			CallID:          body.CallID,
			SelectionNumber: body.SelectionNumber,
			SearchRequest: coach.SearchRequest{
				CustomerName: body.CustomerName,
				FromDate:     body.FromDate,
				ToDate:       body.ToDate,
				DateRange:    body.DateRange,
			},
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, m)
	}
}

// NewCallDetailsHandler returns an http.HandlerFunc for GET /api/v1/calls/{callID}.
func NewCallDetailsHandler(svc CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.GetCallDetails(r.Context(), chi.URLParam(r, "callID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, details)
	}
}
