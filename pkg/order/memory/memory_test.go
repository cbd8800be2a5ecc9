package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quickcart/pkg/id"
	"quickcart/pkg/order"
)

func newOrder() order.NewOrder {
	return order.NewOrder{
		StoreID:         "store-1",
		StoreName:       "FreshMart Grocery",
		Items:           []order.Line{{Name: "Widget", Quantity: 2, Price: decimal.RequireFromString("1.50")}},
		Total:           decimal.RequireFromString("3.00"),
		DeliveryAddress: "123 Main St",
	}
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New, order.Now)

	o, err := repo.Create(ctx, newOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("expected pending, got %s", o.Status)
	}
	got, ok, err := repo.Get(ctx, o.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Items[0].Name != "Widget" {
		t.Fatalf("expected Widget, got %s", got.Items[0].Name)
	}
	updated, ok, err := repo.UpdateStatus(ctx, o.ID, order.StatusDelivered)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.Status != order.StatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if _, ok, _ := repo.Get(ctx, "missing"); ok {
		t.Fatal("expected missing order to be absent")
	}
	if _, ok, err := repo.UpdateStatus(ctx, "missing", order.StatusConfirmed); ok || err != nil {
		t.Fatalf("update missing: ok=%v err=%v", ok, err)
	}
}

func TestSnapshotIsCopied(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New, order.Now)
	in := newOrder()

	o, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	in.Items[0].Name = "changed by caller"
	o.Items[0].Quantity = 99

	got, _, _ := repo.Get(ctx, o.ID)
	if got.Items[0].Name != "Widget" || got.Items[0].Quantity != 2 {
		t.Fatalf("stored snapshot changed: %+v", got.Items[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	repo := New(id.New, clock)

	var ids []string
	for i := 0; i < 3; i++ {
		o, err := repo.Create(ctx, newOrder())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, o.ID)
	}

	list, _ := repo.List(ctx)
	want := []string{ids[2], ids[1], ids[0]}
	for i, o := range list {
		if o.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], o.ID)
		}
	}
}

func TestListSameInstantKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := New(id.New, func() time.Time { return fixed })

	a, _ := repo.Create(ctx, newOrder())
	b, _ := repo.Create(ctx, newOrder())

	list, _ := repo.List(ctx)
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected [%s %s], got [%s %s]", b.ID, a.ID, list[0].ID, list[1].ID)
	}
}

func TestUpdateStatusIsPermissive(t *testing.T) {
	ctx := context.Background()
	repo := New(id.New, order.Now)
	o, _ := repo.Create(ctx, newOrder())

	for _, s := range []order.Status{order.StatusDelivered, order.StatusPending, "lost_in_space", ""} {
		got, ok, err := repo.UpdateStatus(ctx, o.ID, s)
		if err != nil || !ok || got.Status != s {
			t.Fatalf("status %q: ok=%v err=%v got=%q", s, ok, err, got.Status)
		}
	}
}
