package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"boqrate/internal/rate"
)

// CalculateRequest carries a complete engine input. Item is decoded through
// the Normalizer so uploaded analysis rows need not be perfectly shaped.
type CalculateRequest struct {
	Item   json.RawMessage `json:"item"`
	Line   rate.Line       `json:"line"`
	Policy *rate.Policy    `json:"policy"`
	Tables *rate.Tables    `json:"tables"`
	Region string          `json:"region"`
}

type CalculateResponse struct {
	rate.Result
	Deltas rate.Deltas `json:"deltas"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "unreadable body")
		return
	}
	var req CalculateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if len(req.Item) == 0 {
		writeErrorJSON(w, http.StatusBadRequest, "validation_error", "item required")
		return
	}
	item, err := s.normalizer.Normalize(req.Item)
	if err != nil {
		if errors.Is(err, ErrMissingCode) {
			writeErrorJSON(w, http.StatusBadRequest, "validation_error", "item code required")
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid item")
		return
	}

	res, err := s.calculate(rate.Input{
		Item:   item,
		Line:   req.Line,
		Policy: req.Policy,
		Tables: req.Tables,
		Region: req.Region,
	})
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	writeJSON(w, CalculateResponse{Result: res, Deltas: res.Stages.Deltas()})
}
