package orderquery

// Reconcile regroups denormalized flat rows into one OrderView per distinct
// order id. The grouping key is the order id alone; line-level fields never
// affect it. Parent-level fields keep their first-seen values (they are
// invariant across one key's rows) and every row's line fields are appended
// to that key's list in input order. Views are emitted in first-appearance
// order, so reconciling the same rows twice yields structurally equal
// results.
//
// Orders with zero lines cannot appear here: the flat query inner-joins
// order_items, so a caller that must see them uses the batched entity path
// instead.
func Reconcile(rows []FlatRow) []OrderView {
	index := make(map[int64]int, len(rows))
	views := make([]OrderView, 0, len(rows))

	for _, row := range rows {
		at, seen := index[row.OrderID]
		if !seen {
			at = len(views)
			index[row.OrderID] = at
			views = append(views, OrderView{
				OrderSummary: OrderSummary{
					OrderID:    row.OrderID,
					MemberName: row.MemberName,
					OrderDate:  row.OrderDate,
					Status:     row.Status,
					Address:    row.Address,
				},
				Items: []ItemLine{},
			})
		}

		views[at].Items = append(views[at].Items, ItemLine{
			OrderID:    row.OrderID,
			ItemName:   row.ItemName,
			OrderPrice: row.OrderPrice,
			Count:      row.Count,
		})
	}

	return views
}
