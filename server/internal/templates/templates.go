package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed *.html
var FS embed.FS

// Parse returns the parsed templates with custom functions
func Parse() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatNumber": formatNumber,
		"formatCost":   formatCost,
		"formatPct":    formatPct,
	}

	return template.New("").Funcs(funcMap).ParseFS(FS, "*.html")
}

func formatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	str := fmt.Sprintf("%d", n)
	negative := n < 0
	if negative {
		str = str[1:]
	}

	var result strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	if negative {
		return "-" + result.String()
	}
	return result.String()
}

// Small per-message costs need more than cents to be visible
func formatCost(cost float64) string {
	if cost != 0 && cost < 1 && cost > -1 {
		return fmt.Sprintf("$%.4f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

func formatPct(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
