package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	defaultWidth     = 120
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
	// Width overrides terminal detection when positive
	Width int
}

// TerminalWidth returns the current terminal width
func TerminalWidth() int {
	// Check COLUMNS env var first
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if width, err := strconv.Atoi(cols); err == nil && width > 0 {
			return width
		}
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	return defaultWidth
}

func (o TableOptions) compact() bool {
	if o.ForceCompact {
		return true
	}
	width := o.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	return width < compactThreshold
}

// FormatNumber formats a number with thousand separators
func FormatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	str := strconv.FormatInt(n, 10)
	negative := n < 0
	if negative {
		str = str[1:]
	}

	result := make([]byte, 0, len(str)+len(str)/3)
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}

	if negative {
		return "-" + string(result)
	}
	return string(result)
}

// FormatCost formats a cost value as currency.
// Sub-dollar amounts keep four decimals so per-message costs stay visible.
func FormatCost(cost float64) string {
	if cost != 0 && cost < 1 && cost > -1 {
		return fmt.Sprintf("$%.4f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

var (
	datedModel     = regexp.MustCompile(`^(?:[\w-]+/)?claude-(\w+)-([\d-]+?)-(\d{8})$`)
	versionedModel = regexp.MustCompile(`^(?:[\w-]+/)?claude-(\w+)-([\d.-]+)$`)
)

// ShortenModelName converts full model names to short form
// claude-sonnet-4-20250514 -> sonnet-4
// anthropic/claude-opus-4.5 -> opus-4.5
func ShortenModelName(name string) string {
	if matches := datedModel.FindStringSubmatch(name); matches != nil {
		return fmt.Sprintf("%s-%s", matches[1], matches[2])
	}
	if matches := versionedModel.FindStringSubmatch(name); matches != nil {
		return fmt.Sprintf("%s-%s", matches[1], matches[2])
	}
	return name
}

// truncate cuts s to n display columns without splitting a rune
func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "")
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
