package quote

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NotInformed replaces client fields absent from a loaded file.
const NotInformed = "Não informado"

// NoSelection is the index passed by a UI when no row is selected.
const NoSelection = -1

const maxPlateLen = 8

type Direction int

const (
	Up Direction = iota
	Down
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("%w: direction must be up or down, got %q", ErrValidation, s)
}

type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   Money
}

func (li LineItem) Total() Money { return li.UnitPrice.MulInt(li.Quantity) }

type Client struct {
	Name    string
	Phone   string
	Vehicle string
	Plate   string
}

// Normalized applies the input masks of the client form: plate in upper case
// and at most 8 characters, phone restricted to digits and "()- ".
func (c Client) Normalized() Client {
	plate := strings.ToUpper(c.Plate)
	if utf8.RuneCountInString(plate) > maxPlateLen {
		plate = string([]rune(plate)[:maxPlateLen])
	}
	phone := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || strings.ContainsRune("()- ", r) {
			return r
		}
		return -1
	}, c.Phone)
	return Client{Name: c.Name, Phone: phone, Vehicle: c.Vehicle, Plate: plate}
}

type Totals struct {
	Parts Money
	Labor Money
	Grand Money
}

// Quote is the budget being assembled. Items are owned by the quote; callers
// see copies and change them only through the index-based commands.
type Quote struct {
	Client Client
	Labor  Money
	items  []LineItem
}

func New() *Quote { return &Quote{} }

// FromItems builds a quote from already validated items, keeping their order.
func FromItems(c Client, labor Money, items []LineItem) *Quote {
	q := &Quote{Client: c, Labor: labor}
	q.items = append(q.items, items...)
	return q
}

func (q *Quote) Len() int { return len(q.items) }

// Items returns a snapshot of the items in document order.
func (q *Quote) Items() []LineItem {
	out := make([]LineItem, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Quote) Item(index int) (LineItem, error) {
	if err := q.checkIndex(index); err != nil {
		return LineItem{}, err
	}
	return q.items[index], nil
}

func (q *Quote) Add(description, quantityText, priceText string) error {
	it, err := NewLineItem(description, quantityText, priceText)
	if err != nil {
		return err
	}
	q.items = append(q.items, it)
	return nil
}

func (q *Quote) Edit(index int, description, quantityText, priceText string) error {
	if err := q.checkIndex(index); err != nil {
		return err
	}
	it, err := NewLineItem(description, quantityText, priceText)
	if err != nil {
		return err
	}
	q.items[index] = it
	return nil
}

func (q *Quote) Remove(index int) error {
	if err := q.checkIndex(index); err != nil {
		return err
	}
	q.items = append(q.items[:index], q.items[index+1:]...)
	return nil
}

// Move swaps the item at index with its neighbour and returns the index the
// item now occupies. At a boundary it is a no-op returning index.
func (q *Quote) Move(index int, dir Direction) (int, error) {
	if err := q.checkIndex(index); err != nil {
		return index, err
	}
	to := index
	switch dir {
	case Up:
		to = index - 1
	case Down:
		to = index + 1
	default:
		return index, fmt.Errorf("%w: unknown direction %d", ErrValidation, dir)
	}
	if to < 0 || to >= len(q.items) {
		return index, nil
	}
	q.items[index], q.items[to] = q.items[to], q.items[index]
	return to, nil
}

// SetLabor parses the labor input. Unparsable text leaves the labor at zero so
// totals keep updating; the parse error is still returned.
func (q *Quote) SetLabor(text string) error {
	m, err := ParseMoney(text)
	if err != nil {
		q.Labor = Zero
		return err
	}
	q.Labor = m
	return nil
}

func (q *Quote) Totals() Totals {
	parts := Zero
	for _, it := range q.items {
		parts = parts.Add(it.Total())
	}
	return Totals{Parts: parts, Labor: q.Labor, Grand: parts.Add(q.Labor)}
}

// ValidateForExport checks the fields a document cannot be issued without.
func (q *Quote) ValidateForExport() error {
	var missing []string
	if strings.TrimSpace(q.Client.Name) == "" {
		missing = append(missing, "client name")
	}
	if strings.TrimSpace(q.Client.Vehicle) == "" {
		missing = append(missing, "vehicle")
	}
	if len(q.items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func (q *Quote) checkIndex(index int) error {
	if index == NoSelection {
		return ErrNothingSelected
	}
	if index < 0 || index >= len(q.items) {
		return fmt.Errorf("%w: %d (items: %d)", ErrIndexOutOfRange, index, len(q.items))
	}
	return nil
}

// NewLineItem validates raw form input. A blank quantity means 1.
func NewLineItem(description, quantityText, priceText string) (LineItem, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return LineItem{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	qty, err := ParseQuantity(quantityText)
	if err != nil {
		return LineItem{}, err
	}
	price, err := ParseMoney(priceText)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{Description: desc, Quantity: qty, UnitPrice: price}, nil
}

func ParseQuantity(text string) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not an integer", ErrValidation, text)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrValidation, n)
	}
	return n, nil
}
