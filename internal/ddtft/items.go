package ddtft

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ddtft/pkg/models"
)

var (
	productCodeRe  = regexp.MustCompile(`^[A-Z0-9]{6,9}$`)
	vatTokenRe     = regexp.MustCompile(`^\d{1,2}$`)
	nonItemLineRes = regexp.MustCompile(`\b(?:TOTALE|BANCALI|RIFERIMENTO)\b|PRODOTTO\s+NON\s+DISPONIBILE`)
)

// Free-goods markers printed next to the amounts.
var freeGoodsMarkers = map[string]bool{"*": true, "S.M.": true, "SM": true}

// lineTotalTolerance is how far a printed line total may be from
// quantity × price × (1 − discount) before the row is flagged.
var lineTotalTolerance = decimal.NewFromFloat(0.5)

var hundred = decimal.NewFromInt(100)

// looksLikeProductRow reports whether an upper-cased line starts like a
// product row: a 6-9 character code with at least one digit, then a word.
func looksLikeProductRow(up string) bool {
	toks := strings.Fields(up)
	if len(toks) < 3 || !isProductCode(toks[0]) {
		return false
	}
	r := toks[1][0]
	return r >= 'A' && r <= 'Z'
}

func isProductCode(tok string) bool {
	return productCodeRe.MatchString(tok) && strings.ContainsAny(tok, "0123456789")
}

func (p *Parser) extractItems(d *draft) {
	const stageName = "items"

	for _, l := range d.lines {
		if !looksLikeProductRow(l.up) || nonItemLineRes.MatchString(l.up) {
			continue
		}
		item, ok := parseItemRow(l.up)
		if !ok {
			d.diag(DiagUnparsedRow, stageName, l.no, "product row not understood: %s", collapse(l.raw))
			continue
		}
		item.Line = l.no

		if !models.IsValidVATRate(item.VATRate) {
			d.diag(DiagVATRateAnomaly, stageName, l.no, "product %s: VAT token %d is not a valid rate, using %d%%",
				item.Code, item.VATRate, p.lookup.DefaultVATRate)
			item.VATRate = p.lookup.DefaultVATRate
		}
		if !item.FreeGoods {
			expected := item.Quantity.Mul(item.UnitPrice).Mul(hundred.Sub(item.DiscountPercent)).Div(hundred)
			if expected.Sub(item.LineTotal).Abs().GreaterThan(lineTotalTolerance) {
				d.diag(DiagLineTotalMismatch, stageName, l.no, "product %s: printed total %s, expected %s",
					item.Code, item.LineTotal.StringFixed(2), expected.StringFixed(2))
			}
		}
		d.items = append(d.items, item)
	}

	// Fresh products are sold at 4% whatever the row says.
	for i := range d.items {
		it := &d.items[i]
		if it.VATRate != 4 && p.lookup.IsFreshProduct(it.Code, it.Description) {
			d.diag(DiagVATRateCorrected, stageName, it.Line, "product %s is a fresh product, VAT %d%% corrected to 4%%", it.Code, it.VATRate)
			it.VATRate = 4
		}
	}
}

// parseItemRow reads CODE DESCRIPTION UNIT followed by either
// QTY PRICE DISCOUNT TOTAL VAT [extra] or QTY PRICE TOTAL VAT [extra].
// The VAT rate is returned as printed, valid or not.
func parseItemRow(up string) (models.LineItem, bool) {
	toks := strings.Fields(up)
	for u := 2; u < len(toks); u++ {
		unit := models.Unit(toks[u])
		if !unit.IsValid() {
			continue
		}
		free := false
		var tail []string
		for _, t := range toks[u+1:] {
			if freeGoodsMarkers[t] {
				free = true
				continue
			}
			tail = append(tail, t)
		}
		if len(tail) < 4 || len(tail) > 6 || !allItalianNumbers(tail) {
			continue
		}

		item := models.LineItem{
			Code:        toks[0],
			Description: strings.Join(toks[1:u], " "),
			Unit:        unit,
			FreeGoods:   free,
		}
		if item.Description == "" || item.Description == "0" {
			return models.LineItem{}, false
		}
		if fillDiscountShape(&item, tail) || fillPlainShape(&item, tail) {
			return item, true
		}
	}
	return models.LineItem{}, false
}

// fillDiscountShape handles QTY PRICE DISCOUNT TOTAL VAT [extra].
func fillDiscountShape(item *models.LineItem, tail []string) bool {
	if len(tail) < 5 || len(tail) > 6 ||
		!strings.Contains(tail[2], ",") || !strings.Contains(tail[3], ",") || !vatTokenRe.MatchString(tail[4]) {
		return false
	}
	item.Quantity, _ = parseItalianNumber(tail[0])
	item.UnitPrice, _ = parseItalianNumber(tail[1])
	item.DiscountPercent, _ = parseItalianNumber(tail[2])
	item.LineTotal, _ = parseItalianNumber(tail[3])
	item.VATRate, _ = strconv.Atoi(tail[4])
	return true
}

// fillPlainShape handles QTY PRICE TOTAL VAT [extra].
func fillPlainShape(item *models.LineItem, tail []string) bool {
	if len(tail) > 5 || !strings.Contains(tail[2], ",") || !vatTokenRe.MatchString(tail[3]) {
		return false
	}
	item.Quantity, _ = parseItalianNumber(tail[0])
	item.UnitPrice, _ = parseItalianNumber(tail[1])
	item.DiscountPercent = decimal.Zero
	item.LineTotal, _ = parseItalianNumber(tail[2])
	item.VATRate, _ = strconv.Atoi(tail[3])
	return true
}

func allItalianNumbers(toks []string) bool {
	for _, t := range toks {
		if !isItalianNumber(t) {
			return false
		}
	}
	return true
}
