package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/etnz/reconcile"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NoCounterparty is what ExtractCounterparty returns when a description
// names no plausible counterparty. Such records start in the unassigned pool.
const NoCounterparty = "Sin Asignar"

// commonWords are bookkeeping words that never name a counterparty.
var commonWords = map[string]bool{
	"COMPRA": true, "VENTA": true, "COBRO": true, "PAGO": true, "COBRANZA": true,
	"ORDEN DE PAGO": true, "ORDEN PAGO": true, "OP": true,
	"FACTURA": true, "FACT": true, "FC": true, "FA": true, "FB": true, "FE": true,
	"NOTA DE CREDITO": true, "NOTA CREDITO": true, "NC": true,
	"NOTA DE DEBITO": true, "NOTA DEBITO": true, "ND": true,
	"RECIBO": true, "REC": true, "CHEQUE": true, "CH": true,
	"TRANSFERENCIA": true, "TRANSF": true, "TRF": true,
	"DEPOSITO": true, "DEP": true, "RETENCION": true, "RET": true,
	"CANCELACION": true, "APLICACION": true,
	"CONTADO": true, "CREDITO": true, "DEBITO": true,
	"COMP": true, "SEGUN": true, "S/COMPROBANTE": true,
	"AJUSTE": true, "DIFERENCIA": true, "REDONDEO": true,
	"DEVOLUCION": true, "DEV": true, "ANTICIPO": true, "ANT": true, "A CUENTA": true,
	"PERCEPCION": true, "PERC": true, "ACREDITACION": true,
}

var (
	// prefixes of voucher references, removed before looking for a name.
	voucherPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^(?:COMPRA|VENTA|COBRO|PAGO)\s+(?:SEGUN|S/)\s*(?:COMPROBANTE|COMPROB|COMP|FACTURA|FACT|FC|RECIBO|REC)\s*[-–—/]?\s*`),
		regexp.MustCompile(`^ORDEN\s*(?:DE\s*)?PAGO\s*(?:N[°º]?)?\s*[\d\-./]*\s*[-–—/]?\s*`),
		regexp.MustCompile(`^OP\s*N[°º]?\s*[\d\-./]+\s*[-–—/]?\s*`),
		regexp.MustCompile(`^(?:FACTURA|FACT|FC|FA|FB|FE|NC|ND)\s*[A-Z]?\s*[\d\-./]+\s*[-–—/]?\s*`),
		regexp.MustCompile(`^(?:RECIBO|REC|CHEQUE|CH)\s*N[°º]?\s*[\d\-./]+\s*[-–—/]?\s*`),
		regexp.MustCompile(`^(?:COMPRA|VENTA|COBRO|PAGO|COMP)\s+(?:CONTADO|CREDITO)?\s*[-–—/]?\s*`),
		regexp.MustCompile(`^(?:CANCELACION|APLICACION)\s*(?:DE)?\s*[-–—/]?\s*`),
		regexp.MustCompile(`^[A-Z]{1,2}[\d\-./]{6,}\s*[-–—/]?\s*`),
		regexp.MustCompile(`^[\d\-./]{4,}\s*[-–—/]?\s*`),
	}

	trailingParens = regexp.MustCompile(`\(([^)]{3,})\)\s*$`)
	separators     = regexp.MustCompile(`\s*[-–—/|]\s*`)
	leadingDigits  = regexp.MustCompile(`^[\d\s]+`)
	legalForm      = regexp.MustCompile(`^(?:S\.?A\.?C\.?I\.?F\.?|S\.?A\.?|S\.?R\.?L\.?|S\.?A\.?S\.?|S\.?C\.?|S\.?H\.?|INC|LLC|LTDA?|CIA)`)
	labelled       = regexp.MustCompile(`(?:^|\s)(?:A|DE|CLIENTE|PROVEEDOR|PROV|CLI|PARA):\s*(.+?)(?:\s*[-–—/]|$)`)
	onlyCode       = regexp.MustCompile(`^[\d\-./\s]+$`)
	voucherNumber  = regexp.MustCompile(`^[A-Z]?\s*\d{4,}[\-\d]*$`)
	voucherWord    = regexp.MustCompile(`^(?:COMPRA|VENTA|COBRO|PAGO|OP|ORDEN|FACTURA|FACT|FC|NC|ND|REC)\b`)
	shortCode      = regexp.MustCompile(`^[A-Z]{1,2}[\d\-.]+$`)
	twoLetters     = regexp.MustCompile(`[A-Z]{2,}`)
	trailingPunct  = regexp.MustCompile(`[.,;:]+$`)
	nonLetter      = regexp.MustCompile(`[^A-Z]`)
)

// fold returns s in upper case without diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}

// isCommonWord reports whether s is bookkeeping vocabulary or a bare code.
func isCommonWord(s string) bool {
	s = strings.TrimSpace(s)
	switch {
	case s == "", commonWords[s], onlyCode.MatchString(s):
		return true
	case len(nonLetter.ReplaceAllString(s, "")) < 3:
		return true
	case voucherNumber.MatchString(s), voucherWord.MatchString(s):
		return true
	}
	return false
}

// looksLikeName reports whether s could be a business name.
func looksLikeName(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 3 || !twoLetters.MatchString(s) {
		return false
	}
	return !isCommonWord(s) && !shortCode.MatchString(s)
}

// cleanName turns an extracted name into a display name.
func cleanName(name string) string {
	name = trailingPunct.ReplaceAllString(fold(strings.TrimSpace(name)), "")
	name = strings.Join(strings.Fields(name), " ")
	if strings.Count(name, "(") > strings.Count(name, ")") {
		if i := strings.LastIndex(name, "("); i > 0 {
			if utf8.RuneCountInString(name[i+1:]) < 3 {
				name = strings.TrimSpace(name[:i])
			} else {
				name += ")"
			}
		}
	}
	if name = reconcile.Normalize(name); name == "" {
		return NoCounterparty
	}
	return name
}

// splitParts splits a description on its separators, dropping blank parts.
func splitParts(s string) []string {
	var parts []string
	for _, p := range separators.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ExtractCounterparty guesses the business name in a ledger description.
//
// Descriptions look like "FACTURA A 0001-00001234 - ACME S.A." or
// "Cobranza (Transportes Garcia Hnos)". The name is searched, in order, in
// a trailing parenthesis, in the separated parts of the description, in
// what is left once voucher references are removed, after a "CLIENTE:"
// style label, and finally in the whole description. It returns
// NoCounterparty if none of these look like a name.
func ExtractCounterparty(description string) string {
	text := strings.TrimSpace(fold(description))
	if text == "" {
		return NoCounterparty
	}

	if m := trailingParens.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); looksLikeName(inner) {
			return cleanName(inner)
		}
	}

	parts := splitParts(text)
	for i, part := range parts {
		part = strings.TrimSpace(leadingDigits.ReplaceAllString(part, ""))
		if !looksLikeName(part) {
			continue
		}
		if i+1 < len(parts) {
			if next := parts[i+1]; legalForm.MatchString(next) || strings.HasPrefix(next, "(") {
				part += " " + next
			}
		}
		return cleanName(part)
	}

	stripped := text
	for _, re := range voucherPrefixes {
		stripped = re.ReplaceAllString(stripped, "")
	}
	stripped = strings.TrimSpace(stripped)
	if utf8.RuneCountInString(stripped) >= 3 {
		for _, part := range splitParts(stripped) {
			if part = strings.TrimSpace(leadingDigits.ReplaceAllString(part, "")); looksLikeName(part) {
				return cleanName(part)
			}
		}
		if looksLikeName(stripped) && utf8.RuneCountInString(stripped) <= 80 {
			return cleanName(stripped)
		}
	}

	if m := labelled.FindStringSubmatch(text); m != nil && looksLikeName(m[1]) {
		return cleanName(m[1])
	}

	if utf8.RuneCountInString(text) <= 60 && looksLikeName(text) {
		return cleanName(text)
	}
	return NoCounterparty
}
