package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product is the minimal catalog descriptor needed to open a cart line.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
}

// Line is one product/quantity pairing held in the cart.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal returns unit price times quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store holds the ordered cart lines for a single session. All methods
// are safe for concurrent use; the store is owned by exactly one
// session but requests for that session may overlap.
type Store struct {
	mu    sync.Mutex
	lines []Line
	index map[string]int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// AddItem inserts a new line with quantity 1, or increments the
// existing line for the same product. Insertion order is preserved for
// display.
func (s *Store) AddItem(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[p.ID]; ok {
		s.lines[i].Quantity++
		return
	}
	s.index[p.ID] = len(s.lines)
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  1,
	})
}

// RemoveItem deletes the matching line. Absent products are a no-op.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].ProductID] = j
	}
}

// UpdateQuantity sets the line quantity, flooring at 1: decrementing a
// quantity of 1 leaves it at 1 rather than removing the line. Absent
// products are a no-op.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[productID]
	if !ok {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	s.lines[i].Quantity = quantity
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.index = map[string]int{}
}

// TotalAmount returns the sum of line subtotals, zero for an empty cart.
// No discount is applied here; discounts are priced at display and
// checkout time.
func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len reports the number of distinct product lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// TotalUnits sums quantities across all lines.
func (s *Store) TotalUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := 0
	for _, line := range s.lines {
		units += line.Quantity
	}
	return units
}
