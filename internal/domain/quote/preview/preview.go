// Package preview renders a quote as fixed-width text for on-screen review.
package preview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"eurocar/orcamentos/internal/domain/quote"
)

const (
	ruleWidth = 50
	descWidth = 30
)

func Format(q *quote.Quote) string {
	var b strings.Builder
	c := q.Client
	fmt.Fprintf(&b, "%-10s %s\n", "CLIENTE:", c.Name)
	fmt.Fprintf(&b, "%-10s %s\n", "TELEFONE:", c.Phone)
	fmt.Fprintf(&b, "%-10s %s\n", "VEÍCULO:", c.Vehicle)
	fmt.Fprintf(&b, "%-10s %s\n", "PLACA:", c.Plate)
	rule := strings.Repeat("=", ruleWidth)
	b.WriteString(rule + "\n")
	b.WriteString(center("ITENS DO ORÇAMENTO", ruleWidth) + "\n")
	b.WriteString(rule)

	for i, it := range q.Items() {
		fmt.Fprintf(&b, "\n%2d. %-*s %3dx %10s = %10s",
			i+1, descWidth, truncate(it.Description, descWidth), it.Quantity, it.UnitPrice, it.Total())
	}

	t := q.Totals()
	fmt.Fprintf(&b, "\n\n%-15s %20s", "TOTAL PEÇAS:", t.Parts)
	fmt.Fprintf(&b, "\n%-15s %20s", "MÃO DE OBRA:", t.Labor)
	fmt.Fprintf(&b, "\n%-15s %20s\n", "TOTAL GERAL:", t.Grand)
	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
