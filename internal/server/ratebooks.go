package server

import (
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"boqrate/internal/rate"
	"boqrate/internal/store"
)

type ComparisonItem struct {
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	UOM          string  `json:"uom"`
	BaseRate     float64 `json:"base_rate"`
	TargetRate   float64 `json:"target_rate"`
	Delta        float64 `json:"delta"`
	DeltaPercent float64 `json:"delta_percent"`
}

type Comparison struct {
	Base         store.Ratebook   `json:"base"`
	Target       store.Ratebook   `json:"target"`
	Items        []ComparisonItem `json:"items"`
	OnlyInBase   []string         `json:"only_in_base"`
	OnlyInTarget []string         `json:"only_in_target"`
}

// CompareRatebooks matches items by code and orders them by the size of the
// percentage change, largest first.
func CompareRatebooks(base, target []rate.CatalogItem) ([]ComparisonItem, []string, []string) {
	targetByCode := make(map[string]rate.CatalogItem, len(target))
	for _, it := range target {
		targetByCode[it.Code] = it
	}
	items := []ComparisonItem{}
	onlyBase := []string{}
	seen := make(map[string]bool, len(base))
	for _, b := range base {
		seen[b.Code] = true
		t, ok := targetByCode[b.Code]
		if !ok {
			onlyBase = append(onlyBase, b.Code)
			continue
		}
		delta := t.BaseRate - b.BaseRate
		var pct float64
		if b.BaseRate != 0 {
			pct = delta / b.BaseRate * 100
		}
		items = append(items, ComparisonItem{
			Code:         b.Code,
			Description:  b.Description,
			UOM:          b.UOM,
			BaseRate:     b.BaseRate,
			TargetRate:   t.BaseRate,
			Delta:        rate.Round2(delta),
			DeltaPercent: rate.Round2(pct),
		})
	}
	onlyTarget := []string{}
	for _, t := range target {
		if !seen[t.Code] {
			onlyTarget = append(onlyTarget, t.Code)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ai, aj := math.Abs(items[i].DeltaPercent), math.Abs(items[j].DeltaPercent)
		if ai != aj {
			return ai > aj
		}
		return items[i].Code < items[j].Code
	})
	sort.Strings(onlyBase)
	sort.Strings(onlyTarget)
	return items, onlyBase, onlyTarget
}

func (s *Server) handleCompareRatebooks(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	q := r.URL.Query()
	baseID, targetID := strings.TrimSpace(q.Get("base")), strings.TrimSpace(q.Get("target"))
	if baseID == "" || targetID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "validation_error", "base and target required")
		return
	}
	ctx := r.Context()
	var out Comparison
	var err error
	if out.Base, err = s.store.Ratebook(ctx, baseID); err != nil {
		s.writeCalcError(w, err)
		return
	}
	if out.Target, err = s.store.Ratebook(ctx, targetID); err != nil {
		s.writeCalcError(w, err)
		return
	}
	baseItems, err := s.store.RatebookItems(ctx, baseID)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	targetItems, err := s.store.RatebookItems(ctx, targetID)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	out.Items, out.OnlyInBase, out.OnlyInTarget = CompareRatebooks(baseItems, targetItems)
	writeJSON(w, out)
}

type SharesResponse struct {
	ItemID   string       `json:"id"`
	ItemCode string       `json:"item_code"`
	Buckets  rate.Buckets `json:"buckets"`
	Shares   rate.Share   `json:"shares"`
}

func (s *Server) handleItemShares(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	item, err := s.store.CatalogItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	b, err := rate.Aggregate(item)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	writeJSON(w, SharesResponse{ItemID: item.ID, ItemCode: item.Code, Buckets: b, Shares: rate.Shares(b)})
}
