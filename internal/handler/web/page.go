package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TrendLens</title>
<style>
body { font-family: sans-serif; max-width: 1100px; margin: 2rem auto; }
#error-message { color: #c0392b; }
#chart-container img { max-width: 100%; }
</style>
</head>
<body>
<h1>Stock Trend Prediction</h1>
<form id="prediction-form" method="post" action="/ui/predict">
  <input id="ticker-input" name="ticker" type="text" placeholder="e.g. AAPL" value="{{.Ticker}}">
  <button id="submit-btn" type="submit"{{if not .SubmitEnabled}} disabled{{end}}>{{.SubmitLabel}}</button>
</form>
<h2 id="result-title">{{.ResultTitle}}</h2>
<p id="error-message">{{.ErrorMessage}}</p>
<div id="chart-container" style="display: {{if .ChartVisible}}block{{else}}none{{end}};">
{{if .ChartVisible}}  <img src="/ui/chart.png?v={{.Generation}}" alt="{{.ChartTitle}}">{{end}}
</div>
</body>
</html>
`))

type pageData struct {
	Ticker        string
	SubmitEnabled bool
	SubmitLabel   string
	ResultTitle   string
	ErrorMessage  string
	ChartVisible  bool
	ChartTitle    string
	Generation    int
}
