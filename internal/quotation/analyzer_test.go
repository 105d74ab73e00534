package quotation_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"sourcing/internal/quotation"
)

func priceScores(res quotation.Result) map[string]*float64 {
	out := map[string]*float64{}
	for _, s := range res.Quotations {
		out[s.Source["supplier"].(string)] = s.PriceScore
	}
	return out
}

func TestAnalyze_PriceScoreExtremes(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "a", "bid_amount": 100.0},
		{"supplier": "b", "bid_amount": 200.0},
		{"supplier": "c", "bid_amount": "300"},
	})

	ps := priceScores(res)
	require.InDelta(t, 100, *ps["a"], 1e-9)
	require.InDelta(t, 50, *ps["b"], 1e-9)
	require.InDelta(t, 0, *ps["c"], 1e-9)
}

func TestAnalyze_EqualBidsScoreFull(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "a", "bid_amount": 150.0},
		{"supplier": "b", "bid_amount": 150.0},
	})

	for _, p := range priceScores(res) {
		require.Equal(t, 100.0, *p)
	}
}

func TestAnalyze_UnparseableBidHasNoPriceScore(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "a", "bid_amount": 100.0, "value_score": 10.0},
		{"supplier": "b", "bid_amount": "n/a", "value_score": 10.0},
		{"supplier": "c", "bid_amount": -20.0, "value_score": 10.0},
	})

	ps := priceScores(res)
	require.NotNil(t, ps["a"])
	require.Nil(t, ps["b"])
	require.Nil(t, ps["c"])
	require.Equal(t, "a", res.Quotations[0].Source["supplier"])
	require.Equal(t, 3.0, res.Quotations[1].CompositeScore)
}

func TestAnalyze_NoBidsAtAll(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "a", "safety_score": 80.0},
	})
	require.Nil(t, res.Quotations[0].PriceScore)
	require.Equal(t, 20.0, res.Quotations[0].CompositeScore)
}

func TestComposite(t *testing.T) {
	price := 80.0
	require.Equal(t, 76.0, quotation.Composite(&price, 70, 90, 60, 50))
	require.Equal(t, 0.0, quotation.Composite(nil, 0, 0, 0, 0))
	require.Equal(t, 33.33, quotation.Composite(nil, 100, 0, 33.3, 0))
}

func TestAnalyze_ClampsComponentScores(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"value_score": 150.0, "safety_score": -10.0, "jci_score": "abc", "delivery_score": " 40 "},
	})
	s := res.Quotations[0]
	require.Equal(t, 100.0, s.ValueScore)
	require.Equal(t, 0.0, s.SafetyScore)
	require.Equal(t, 0.0, s.JCIScore)
	require.Equal(t, 40.0, s.DeliveryScore)
}

func TestAnalyze_RankOrder(t *testing.T) {
	// Composite = 0.3 * value_score when only value is set.
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "low", "value_score": 200.0 / 3},
		{"supplier": "high", "value_score": 100.0, "safety_score": 0.0, "jci_score": 0.0},
		{"supplier": "mid", "value_score": 100.0, "delivery_score": 0.0},
	})

	got := []string{}
	ranks := []int{}
	for _, s := range res.Quotations {
		got = append(got, s.Source["supplier"].(string))
		ranks = append(ranks, s.Rank)
	}
	// high and mid tie at 30; input order breaks the tie.
	if diff := cmp.Diff([]string{"high", "mid", "low"}, got); diff != "" {
		t.Fatalf("rank order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []int{1, 2, 3}, ranks)
	require.NotNil(t, res.BestQuotation)
	require.Equal(t, "high", res.BestQuotation.Source["supplier"])
	require.Equal(t, 1, res.BestQuotation.Rank)
}

func TestAnalyze_CompositeOrdering(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"id": "x", "safety_score": 100.0},
		{"id": "y", "value_score": 100.0, "safety_score": 100.0, "jci_score": 100.0, "delivery_score": 100.0},
		{"id": "z", "value_score": 100.0, "safety_score": 100.0},
	})

	composites := []float64{}
	for _, s := range res.Quotations {
		composites = append(composites, s.CompositeScore)
	}
	require.Equal(t, []float64{70, 55, 25}, composites)
	require.Equal(t, "y", res.BestQuotation.Source["id"])
}

func TestAnalyze_Empty(t *testing.T) {
	res := quotation.Analyze(nil)
	require.Empty(t, res.Quotations)
	require.Nil(t, res.BestQuotation)
}

func TestScoredMarshalJSON(t *testing.T) {
	res := quotation.Analyze([]quotation.Quotation{
		{"supplier": "a", "bid_amount": 10.0, "note": "fast", "value_score": 50.0},
	})

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded struct {
		Quotations    []map[string]any `json:"quotations"`
		BestQuotation map[string]any   `json:"best_quotation"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Quotations, 1)
	q := decoded.Quotations[0]
	require.Equal(t, "fast", q["note"])
	require.Equal(t, 100.0, q["price_score"])
	require.Equal(t, 45.0, q["composite_score"])
	require.Equal(t, 1.0, q["rank"])
	require.Equal(t, "a", decoded.BestQuotation["supplier"])
}
