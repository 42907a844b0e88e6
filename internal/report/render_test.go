package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/qrafiq/truck-etl/internal/domain"
)

func sampleSummary() domain.DailySummary {
	return domain.DailySummary{
		Date:       "2024-10-20",
		TotalValue: 21.00,
		Trucks: []domain.TruckLine{
			{
				TruckID:            1,
				TruckName:          "Burger Van",
				NumTransactions:    2,
				TotalValue:         15.00,
				CashPercentage:     50.00,
				CardPercentage:     50.00,
				AverageTransaction: 7.50,
			},
			{
				TruckID:            2,
				TruckName:          "Taco Truck",
				NumTransactions:    1,
				TotalValue:         6.00,
				CashPercentage:     0.00,
				CardPercentage:     100.00,
				AverageTransaction: 6.00,
			},
		},
	}
}

func TestRenderJSONKeys(t *testing.T) {
	data, err := RenderJSON(sampleSummary())
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	for _, key := range []string{"date", "total_transaction_value", "trucks"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	trucks, ok := doc["trucks"].([]any)
	if !ok || len(trucks) != 2 {
		t.Fatalf("trucks = %v, want 2-element array", doc["trucks"])
	}

	line, ok := trucks[0].(map[string]any)
	if !ok {
		t.Fatalf("trucks[0] = %v, want object", trucks[0])
	}
	for _, key := range []string{
		"truck_id",
		"truck_name",
		"num_transactions",
		"total_transaction_value",
		"cash_transactions",
		"card_transactions",
		"Average_transaction",
	} {
		if _, ok := line[key]; !ok {
			t.Errorf("missing truck line key %q", key)
		}
	}

	if got := line["Average_transaction"].(float64); got != 7.50 {
		t.Errorf("Average_transaction = %v, want 7.5", got)
	}
}

func TestRenderJSONEmptyTrucksIsArray(t *testing.T) {
	summary := domain.DailySummary{Date: "2024-10-20", Trucks: []domain.TruckLine{}}

	data, err := RenderJSON(summary)
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	if !strings.Contains(string(data), `"trucks": []`) {
		t.Errorf("empty trucks must serialize as [], got:\n%s", data)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleSummary())
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	for _, want := range []string{
		"Daily Transaction Report",
		"2024-10-20",
		"&pound;21.00",
		"<td>Burger Van</td>",
		"<td>Taco Truck</td>",
		"<td>7.50</td>",
		"<td>100.00</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}

	if got := strings.Count(html, "<tr>"); got != 3 {
		t.Errorf("got %d table rows, want 3 (header + 2 trucks)", got)
	}
}

func TestRenderHTMLEscapesNames(t *testing.T) {
	summary := domain.DailySummary{
		Date: "2024-10-20",
		Trucks: []domain.TruckLine{
			{TruckID: 1, TruckName: "<script>alert(1)</script>", NumTransactions: 1},
		},
	}

	html, err := RenderHTML(summary)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if strings.Contains(html, "<script>alert") {
		t.Error("truck name was not escaped")
	}
}

func TestRenderProducesBoth(t *testing.T) {
	jsonData, html, err := Render(sampleSummary())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(jsonData) == 0 || !json.Valid(jsonData) {
		t.Error("JSON output invalid")
	}
	if !strings.Contains(html, "<table>") {
		t.Error("HTML output missing table")
	}
}
