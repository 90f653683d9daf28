package orderquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderkit/internal/domain"
)

func flatFixture() []FlatRow {
	seoul := domain.Address{City: "Seoul", Street: "Teheran-ro", Zipcode: "06134"}
	busan := domain.Address{City: "Busan", Street: "Haeundae-ro", Zipcode: "48094"}
	when := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	return []FlatRow{
		{OrderID: 1, MemberName: "park", OrderDate: when, Status: domain.StatusOrdered, Address: seoul,
			ItemName: "Clean Code", OrderPrice: 10000, Count: 1},
		{OrderID: 1, MemberName: "park", OrderDate: when, Status: domain.StatusOrdered, Address: seoul,
			ItemName: "Effective Go", OrderPrice: 20000, Count: 2},
		{OrderID: 2, MemberName: "kim", OrderDate: when.Add(time.Hour), Status: domain.StatusCancelled, Address: busan,
			ItemName: "Abbey Road", OrderPrice: 15000, Count: 1},
	}
}

func TestReconcileGroupsByOrderID(t *testing.T) {
	views := Reconcile(flatFixture())

	require.Len(t, views, 2)

	assert.Equal(t, int64(1), views[0].OrderID)
	assert.Equal(t, "park", views[0].MemberName)
	require.Len(t, views[0].Items, 2)
	assert.Equal(t, "Clean Code", views[0].Items[0].ItemName)
	assert.Equal(t, "Effective Go", views[0].Items[1].ItemName)

	assert.Equal(t, int64(2), views[1].OrderID)
	require.Len(t, views[1].Items, 1)
	assert.Equal(t, "Abbey Road", views[1].Items[0].ItemName)
}

func TestReconcileIsIdempotent(t *testing.T) {
	rows := flatFixture()

	first := Reconcile(rows)
	second := Reconcile(rows)

	assert.Equal(t, first, second)
}

func TestReconcileKeysOnOrderIDOnly(t *testing.T) {
	// Two rows with the same order id but different line fields must land in
	// one view; line fields never split a group.
	rows := flatFixture()
	views := Reconcile(rows)

	total := 0
	for _, v := range views {
		total += len(v.Items)
	}
	assert.Equal(t, len(rows), total)

	seen := make(map[int64]bool)
	for _, v := range views {
		assert.False(t, seen[v.OrderID], "order %d grouped twice", v.OrderID)
		seen[v.OrderID] = true
	}
}

func TestReconcileKeepsFirstSeenParentFields(t *testing.T) {
	when := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := []FlatRow{
		{OrderID: 7, MemberName: "park", OrderDate: when, Status: domain.StatusOrdered,
			ItemName: "a", OrderPrice: 100, Count: 1},
		// Same key, drifted parent fields: first-seen values must win.
		{OrderID: 7, MemberName: "PARK?", OrderDate: when.Add(time.Minute), Status: domain.StatusCancelled,
			ItemName: "b", OrderPrice: 200, Count: 2},
	}

	views := Reconcile(rows)

	require.Len(t, views, 1)
	assert.Equal(t, "park", views[0].MemberName)
	assert.Equal(t, when, views[0].OrderDate)
	assert.Equal(t, domain.StatusOrdered, views[0].Status)
	require.Len(t, views[0].Items, 2)
}

func TestReconcileEmptyInput(t *testing.T) {
	views := Reconcile(nil)
	assert.Empty(t, views)
	assert.NotNil(t, views)
}

func TestReconcileInterleavedRows(t *testing.T) {
	// Rows of different orders interleaved: each order still collects its
	// lines in input order, views emitted in first-appearance order.
	rows := flatFixture()
	interleaved := []FlatRow{rows[0], rows[2], rows[1]}

	views := Reconcile(interleaved)

	require.Len(t, views, 2)
	assert.Equal(t, int64(1), views[0].OrderID)
	assert.Equal(t, int64(2), views[1].OrderID)
	require.Len(t, views[0].Items, 2)
	assert.Equal(t, "Clean Code", views[0].Items[0].ItemName)
	assert.Equal(t, "Effective Go", views[0].Items[1].ItemName)
}
