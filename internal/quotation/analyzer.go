// Package quotation ranks ad hoc supplier quotations by a weighted composite score.
// It works on caller-supplied JSON objects and never touches storage.
package quotation

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Composite score weights. They sum to 1.
const (
	PriceWeight      = 0.30
	ValueWeight      = 0.30
	SafetyWeight     = 0.25
	ComplianceWeight = 0.10
	DeliveryWeight   = 0.05
)

const (
	minScore = 0.0
	maxScore = 100.0
)

// Quotation is one caller-supplied quotation object. Unknown keys are carried through to the output.
type Quotation map[string]any

// Scored is a quotation with its computed scores.
type Scored struct {
	Source         Quotation
	PriceScore     *float64
	ValueScore     float64
	SafetyScore    float64
	JCIScore       float64
	DeliveryScore  float64
	CompositeScore float64
	Rank           int
}

// MarshalJSON emits the source object with the computed fields overlaid.
func (s Scored) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Source)+7)
	for k, v := range s.Source {
		out[k] = v
	}
	out["price_score"] = s.PriceScore
	out["value_score"] = s.ValueScore
	out["safety_score"] = s.SafetyScore
	out["jci_score"] = s.JCIScore
	out["delivery_score"] = s.DeliveryScore
	out["composite_score"] = s.CompositeScore
	out["rank"] = s.Rank
	return json.Marshal(out)
}

// Result is the ranked batch, best first.
type Result struct {
	Quotations    []Scored `json:"quotations"`
	BestQuotation *Scored  `json:"best_quotation"`
}

// Analyze scores and ranks quotes. Ties keep input order.
func Analyze(quotes []Quotation) Result {
	scored := make([]Scored, len(quotes))

	bids := make([]*float64, len(quotes))
	minBid, maxBid := math.Inf(1), math.Inf(-1)
	anyBid := false
	for i, q := range quotes {
		if b, ok := normalizeBidAmount(q["bid_amount"]); ok {
			bids[i] = &b
			minBid = math.Min(minBid, b)
			maxBid = math.Max(maxBid, b)
			anyBid = true
		}
	}

	for i, q := range quotes {
		s := Scored{
			Source:        q,
			ValueScore:    score(q["value_score"]),
			SafetyScore:   score(q["safety_score"]),
			JCIScore:      score(q["jci_score"]),
			DeliveryScore: score(q["delivery_score"]),
		}
		if anyBid && bids[i] != nil {
			p := priceScore(*bids[i], minBid, maxBid)
			s.PriceScore = &p
		}
		s.CompositeScore = Composite(s.PriceScore, s.ValueScore, s.SafetyScore, s.JCIScore, s.DeliveryScore)
		scored[i] = s
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].CompositeScore > scored[b].CompositeScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	res := Result{Quotations: scored}
	if len(scored) > 0 {
		best := scored[0]
		res.BestQuotation = &best
	}
	return res
}

// Composite is the weighted sum of the component scores rounded to two decimals.
// A nil price score contributes nothing.
func Composite(price *float64, value, safety, jci, delivery float64) float64 {
	var p float64
	if price != nil {
		p = *price
	}
	total := PriceWeight*p + ValueWeight*value + SafetyWeight*safety + ComplianceWeight*jci + DeliveryWeight*delivery
	return math.Round(total*100) / 100
}

// priceScore maps the cheapest bid to 100 and the most expensive to 0.
func priceScore(bid, minBid, maxBid float64) float64 {
	if maxBid == minBid {
		return maxScore
	}
	return clamp(maxScore * (maxBid - bid) / (maxBid - minBid))
}

func score(v any) float64 {
	f, ok := toFloat(v)
	if !ok {
		return minScore
	}
	return clamp(f)
}

func normalizeBidAmount(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func clamp(f float64) float64 {
	return math.Max(minScore, math.Min(maxScore, f))
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
