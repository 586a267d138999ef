package exchange

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

const usdMarker = "U.S.A"

// sellColumn is the cell after the marker holding the selling rate; the
// first one is the buying rate.
const sellColumn = 2

// ParseBNARate extracts the dollar selling rate from the Banco Nación home
// page: the second <td> following the first text containing "U.S.A".
func ParseBNARate(r io.Reader) (decimal.Decimal, error) {
	z := html.NewTokenizer(r)
	seenMarker := false
	cells := 0
	inCell := false
	var text strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && err != io.EOF {
				return decimal.Zero, err
			}
			return decimal.Zero, ErrRateNotFound
		case html.TextToken:
			if !seenMarker {
				if strings.Contains(string(z.Text()), usdMarker) {
					seenMarker = true
				}
				continue
			}
			if inCell {
				text.Write(z.Text())
			}
		case html.StartTagToken:
			if !seenMarker {
				continue
			}
			name, _ := z.TagName()
			if string(name) == "td" {
				cells++
				inCell = cells == sellColumn
			}
		case html.EndTagToken:
			if !inCell {
				continue
			}
			name, _ := z.TagName()
			if string(name) == "td" {
				return parseArgentineDecimal(text.String())
			}
		}
	}
}

// parseArgentineDecimal reads "1.234,56" style numbers. Without a comma the
// value is parsed as is.
func parseArgentineDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: empty cell", ErrInvalidRate)
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidRate, raw)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	return rate, nil
}
