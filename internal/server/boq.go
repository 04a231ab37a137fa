package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"boqrate/internal/explain"
	"boqrate/internal/metrics"
	"boqrate/internal/rate"
	"boqrate/internal/store"
)

// recomputeLimit caps concurrent line calculations per request.
const recomputeLimit = 8

type LineResult struct {
	ID          string      `json:"id"`
	ItemID      string      `json:"ratebook_item_id"`
	ItemCode    string      `json:"item_code"`
	Description string      `json:"description"`
	UOM         string      `json:"uom"`
	Quantity    float64     `json:"quantity"`
	FinalRate   float64     `json:"final_rate"`
	FinalAmount float64     `json:"final_amount"`
	Result      rate.Result `json:"result"`
	Deltas      rate.Deltas `json:"deltas"`
}

type SubprojectBOQ struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Lines []LineResult `json:"lines"`
	Total float64      `json:"total"`
}

type ProjectBOQ struct {
	Project     store.Project   `json:"project"`
	Subprojects []SubprojectBOQ `json:"subprojects"`
	Total       float64         `json:"total_cost"`
}

// loadProjectInputs fetches the policy and region tables shared by every line.
func (s *Server) loadProjectInputs(ctx context.Context, projectID string) (store.Project, *rate.Tables, error) {
	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		return store.Project{}, nil, err
	}
	tables, err := s.store.Tables(ctx, p.Region)
	if err != nil {
		return store.Project{}, nil, err
	}
	return p, tables, nil
}

func (s *Server) handleProjectBOQ(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	p, tables, err := s.loadProjectInputs(ctx, id)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	subs, err := s.store.Subprojects(ctx, id)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	lines, err := s.store.LineItems(ctx, id)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.RatebookItemID)
	}
	items, err := s.store.CatalogItems(ctx, ids)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	results, err := s.recompute(ctx, p, tables, lines, items)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}

	out := ProjectBOQ{Project: p, Subprojects: make([]SubprojectBOQ, 0, len(subs))}
	bySub := make(map[string][]LineResult)
	for i, l := range lines {
		bySub[l.SubprojectID] = append(bySub[l.SubprojectID], results[i])
	}
	projectTotal := decimal.Zero
	for _, sp := range subs {
		sb := SubprojectBOQ{ID: sp.ID, Name: sp.Name, Lines: bySub[sp.ID]}
		if sb.Lines == nil {
			sb.Lines = []LineResult{}
		}
		subTotal := decimal.Zero
		for _, lr := range sb.Lines {
			subTotal = subTotal.Add(decimal.NewFromFloat(lr.FinalAmount))
		}
		sb.Total = subTotal.InexactFloat64()
		projectTotal = projectTotal.Add(subTotal)
		out.Subprojects = append(out.Subprojects, sb)
	}
	out.Total = projectTotal.InexactFloat64()
	writeJSON(w, out)
}

// recompute prices every line in parallel. Results keep line order; when
// several lines fail, the earliest line's error is returned.
func (s *Server) recompute(ctx context.Context, p store.Project, tables *rate.Tables, lines []store.LineItem, items map[string]rate.CatalogItem) ([]LineResult, error) {
	results := make([]LineResult, len(lines))
	errs := make([]error, len(lines))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(recomputeLimit)
	for i, l := range lines {
		i, l := i, l
		g.Go(func() error {
			item, ok := items[l.RatebookItemID]
			if !ok {
				errs[i] = fmt.Errorf("ratebook item %s: %w", l.RatebookItemID, store.ErrNotFound)
				return errs[i]
			}
			res, err := s.calculate(rate.Input{Item: item, Line: l.Line(), Policy: p.Policy, Tables: tables, Region: p.Region})
			if err != nil {
				errs[i] = err
				return err
			}
			results[i] = newLineResult(l, item, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return nil, err
	}
	return results, nil
}

func newLineResult(l store.LineItem, item rate.CatalogItem, res rate.Result) LineResult {
	return LineResult{
		ID:          l.ID,
		ItemID:      item.ID,
		ItemCode:    item.Code,
		Description: item.Description,
		UOM:         item.UOM,
		Quantity:    l.Quantity,
		FinalRate:   res.FinalRate,
		FinalAmount: res.FinalAmount,
		Result:      res,
		Deltas:      res.Stages.Deltas(),
	}
}

// lineInput assembles the engine input for one persisted BOQ line.
func (s *Server) lineInput(ctx context.Context, lineID string) (rate.Input, store.LineItem, error) {
	line, projectID, err := s.store.LineItem(ctx, lineID)
	if err != nil {
		return rate.Input{}, store.LineItem{}, err
	}
	p, tables, err := s.loadProjectInputs(ctx, projectID)
	if err != nil {
		return rate.Input{}, store.LineItem{}, err
	}
	item, err := s.store.CatalogItem(ctx, line.RatebookItemID)
	if err != nil {
		return rate.Input{}, store.LineItem{}, err
	}
	return rate.Input{Item: item, Line: line.Line(), Policy: p.Policy, Tables: tables, Region: p.Region}, line, nil
}

func (s *Server) handleLineRate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	in, line, err := s.lineInput(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	res, err := s.calculate(in)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	writeJSON(w, newLineResult(line, in.Item, res))
}

type ExplanationResponse struct {
	Line             LineResult   `json:"line"`
	Context          rate.Context `json:"context"`
	Provider         string       `json:"provider,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
	ExplanationError string       `json:"explanation_error,omitempty"`
}

// handleLineExplanation always returns the numeric result; a generator
// failure only fills explanation_error.
func (s *Server) handleLineExplanation(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	in, line, err := s.lineInput(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	res, err := s.calculate(in)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	c := rate.NewContext(in, res)
	resp := ExplanationResponse{Line: newLineResult(line, in.Item, res), Context: c}

	if s.explainer == nil {
		resp.ExplanationError = explain.ErrUnavailable.Error() + ": no generator configured"
		writeJSON(w, resp)
		return
	}
	resp.Provider = s.explainer.Provider()
	text, err := s.explainer.Explain(r.Context(), c)
	if err != nil {
		metrics.ExplanationsTotal.WithLabelValues(resp.Provider, "error").Inc()
		s.logger.Warn("explanation unavailable", zap.String("line_id", line.ID), zap.Error(err))
		resp.ExplanationError = err.Error()
	} else {
		metrics.ExplanationsTotal.WithLabelValues(resp.Provider, "ok").Inc()
		resp.Explanation = text
	}
	writeJSON(w, resp)
}
