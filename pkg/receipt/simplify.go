package receipt

import "sort"

// groupKey identifies an aggregation group. Lines merge only when both the
// name and the printed line total match exactly; the same product at a
// different line total stays a separate purchase.
type groupKey struct {
	name  string
	price string
}

// Simplify aggregates receipt lines into the minimal purchase list.
//
// Lines are grouped by (name, line total) and their amounts summed; the
// group's shared price is carried as-is, not re-summed. Groups with a
// negative price (vouchers, loyalty-point credits posted as negative
// pseudo-lines) are dropped whole, never netted against positive groups.
// Output is sorted ascending by name.
func Simplify(lines []Line) []Purchase {
	amounts := make(map[groupKey]float64)
	order := make([]groupKey, 0, len(lines))
	prices := make(map[groupKey]Line)

	for _, l := range lines {
		key := groupKey{name: l.Name, price: l.Price.String()}
		if _, seen := amounts[key]; !seen {
			order = append(order, key)
			prices[key] = l
		}
		amounts[key] += l.Amount
	}

	purchases := make([]Purchase, 0, len(order))
	for _, key := range order {
		line := prices[key]
		if line.Price.IsNegative() {
			continue
		}
		purchases = append(purchases, Purchase{
			Amount: amounts[key],
			Price:  line.Price,
			Name:   line.Name,
		})
	}

	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Name < purchases[j].Name
	})
	return purchases
}
