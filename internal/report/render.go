package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/qrafiq/truck-etl/internal/domain"
)

// RenderJSON serializes a summary to its stable JSON form. Key names are a
// published contract; downstream consumers parse them by name.
func RenderJSON(summary domain.DailySummary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return data, nil
}

// RenderHTML renders a summary as a static report page: a header block with
// the date and total revenue, then one table row per truck line.
func RenderHTML(summary domain.DailySummary) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, summary); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Render produces both report representations.
func Render(summary domain.DailySummary) ([]byte, string, error) {
	jsonData, err := RenderJSON(summary)
	if err != nil {
		return nil, "", err
	}
	htmlData, err := RenderHTML(summary)
	if err != nil {
		return nil, "", err
	}
	return jsonData, htmlData, nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Transaction Summary</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            color: #333;
            margin: 20px;
        }
        .container {
            max-width: 800px;
            margin: 0 auto;
        }
        h1 {
            color: #5b5b5b;
            text-align: center;
        }
        .summary {
            background-color: #f9f9f9;
            padding: 15px;
            margin-bottom: 20px;
            border-radius: 5px;
        }
        .summary p {
            margin: 5px 0;
            font-size: 1.1em;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin-top: 10px;
        }
        table, th, td {
            border: 1px solid #ddd;
        }
        th, td {
            padding: 10px;
            text-align: center;
        }
        th {
            background-color: #f2f2f2;
            color: #333;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Daily Transaction Report</h1>

        <div class="summary">
            <p><strong>Date:</strong> {{.Date}}</p>
            <p><strong>Total Transaction Value:</strong> &pound;{{money .TotalValue}}</p>
        </div>

        <table>
            <thead>
                <tr>
                    <th>Truck ID</th>
                    <th>Truck Name</th>
                    <th>Number of Transactions</th>
                    <th>Total Transaction Value (&pound;)</th>
                    <th>Cash Transactions (%)</th>
                    <th>Card Transactions (%)</th>
                    <th>Average Transaction Value (&pound;)</th>
                </tr>
            </thead>
            <tbody>
{{- range .Trucks}}
                <tr>
                    <td>{{.TruckID}}</td>
                    <td>{{.TruckName}}</td>
                    <td>{{.NumTransactions}}</td>
                    <td>{{money .TotalValue}}</td>
                    <td>{{money .CashPercentage}}</td>
                    <td>{{money .CardPercentage}}</td>
                    <td>{{money .AverageTransaction}}</td>
                </tr>
{{- end}}
            </tbody>
        </table>
    </div>
</body>
</html>
`))
