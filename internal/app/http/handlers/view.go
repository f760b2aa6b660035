package handlers

import "eurocar/orcamentos/internal/domain/quote"

type clientView struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
	Plate   string `json:"plate"`
}

type itemView struct {
	Index         int    `json:"index"`
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	UnitPriceText string `json:"unit_price_text"` // as typed in the edit form
	Total         string `json:"total"`
}

type totalsView struct {
	Parts string `json:"parts"`
	Labor string `json:"labor"`
	Grand string `json:"grand"`
}

type quoteView struct {
	Client    clientView `json:"client"`
	LaborText string     `json:"labor_text"`
	Items     []itemView `json:"items"`
	Totals    totalsView `json:"totals"`
	Selected  *int       `json:"selected,omitempty"`
	Warning   string     `json:"warning,omitempty"`
}

func newQuoteView(q *quote.Quote) quoteView {
	t := q.Totals()
	v := quoteView{
		Client: clientView{
			Name:    q.Client.Name,
			Phone:   q.Client.Phone,
			Vehicle: q.Client.Vehicle,
			Plate:   q.Client.Plate,
		},
		LaborText: q.Labor.InputText(),
		Items:     []itemView{},
		Totals:    totalsView{Parts: t.Parts.String(), Labor: t.Labor.String(), Grand: t.Grand.String()},
	}
	for i, it := range q.Items() {
		v.Items = append(v.Items, itemView{
			Index:         i,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.String(),
			UnitPriceText: it.UnitPrice.InputText(),
			Total:         it.Total().String(),
		})
	}
	return v
}
