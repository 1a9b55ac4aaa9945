package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/bistrobot/internal/config"
	"github.com/m3rciful/bistrobot/internal/conversation"
	"github.com/m3rciful/bistrobot/internal/session"
	"github.com/m3rciful/bistrobot/internal/storage"
)

type fakeReplier struct {
	msgs []string
}

func (f *fakeReplier) Reply(text string, _ ...interface{}) error {
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeReplier) joined() string {
	return strings.Join(f.msgs, "\n")
}

func testHandler(store storage.Storage, adminID int64) *Handler {
	loyalty := config.LoyaltyConfig{OrderPoints: 10, ReservationPoints: 5}
	return NewHandler(store, session.NewManager(), loyalty, adminID, nil)
}

func TestCheckoutCreatesOrderAndAwardsPoints(t *testing.T) {
	store := storage.NewMemory()
	h := testHandler(store, 0)
	ctx := context.Background()
	r := &fakeReplier{}

	if err := h.dispatch(ctx, r, 42, "alice", conversation.ItemChosen{Name: "Тирамису", Price: 380}); err != nil {
		t.Fatalf("item: %v", err)
	}
	if err := h.dispatch(ctx, r, 42, "alice", conversation.Checkout{}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	orders, err := store.ListOrders(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Item != "Тирамису" || orders[0].Total != 380 || orders[0].Quantity != 1 {
		t.Fatalf("order row = %+v", orders[0])
	}
	if orders[0].Status != storage.OrderStatusNew {
		t.Fatalf("status = %q", orders[0].Status)
	}

	points, _ := store.Points(ctx, 42)
	if points != 10 {
		t.Fatalf("points = %d, want 10", points)
	}
	if !strings.Contains(r.joined(), "Заказ #1") {
		t.Fatalf("no order confirmation in %q", r.joined())
	}
}

func TestSecondSelectionOverwritesCart(t *testing.T) {
	store := storage.NewMemory()
	h := testHandler(store, 0)
	ctx := context.Background()
	r := &fakeReplier{}

	_ = h.dispatch(ctx, r, 1, "bob", conversation.ItemChosen{Name: "Брускетта", Price: 320})
	_ = h.dispatch(ctx, r, 1, "bob", conversation.ItemChosen{Name: "Тирамису", Price: 380})
	if err := h.dispatch(ctx, r, 1, "bob", conversation.Checkout{}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	orders, _ := store.ListOrders(ctx, 10)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want exactly 1", len(orders))
	}
	if orders[0].Item != "Тирамису" {
		t.Fatalf("item = %q, want the latest selection", orders[0].Item)
	}
}

func TestEmptyCheckoutWritesNothing(t *testing.T) {
	store := storage.NewMemory()
	h := testHandler(store, 0)
	ctx := context.Background()
	r := &fakeReplier{}

	if err := h.dispatch(ctx, r, 7, "carol", conversation.Checkout{}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	orders, _ := store.ListOrders(ctx, 10)
	if len(orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(orders))
	}
	points, _ := store.Points(ctx, 7)
	if points != 0 {
		t.Fatalf("points = %d, want 0", points)
	}
	if len(r.msgs) != 1 || !strings.Contains(r.msgs[0], "Корзина пуста") {
		t.Fatalf("expected empty cart message, got %q", r.msgs)
	}
}

func TestReservationFlowPersistsAndAwards(t *testing.T) {
	store := storage.NewMemory()
	h := testHandler(store, 0)
	ctx := context.Background()
	r := &fakeReplier{}

	_ = h.dispatch(ctx, r, 9, "dave", conversation.ReserveTable{})
	_ = h.dispatch(ctx, r, 9, "dave", conversation.FreeText{Text: "2025-12-31"})
	_ = h.dispatch(ctx, r, 9, "dave", conversation.FreeText{Text: "19:30"})
	if err := h.dispatch(ctx, r, 9, "dave", conversation.FreeText{Text: "abc"}); err != nil {
		t.Fatalf("people: %v", err)
	}

	reservations, _ := store.ListReservations(ctx, 10)
	if len(reservations) != 1 {
		t.Fatalf("reservations = %d, want 1", len(reservations))
	}
	res := reservations[0]
	if res.Date != "2025-12-31" || res.Time != "19:30" {
		t.Fatalf("reservation = %+v", res)
	}
	if res.People != 1 {
		t.Fatalf("people = %d, want lenient fallback 1", res.People)
	}
	if res.Status != storage.ReservationStatusPending {
		t.Fatalf("status = %q", res.Status)
	}

	points, _ := store.Points(ctx, 9)
	if points != 5 {
		t.Fatalf("points = %d, want 5", points)
	}
}

func TestPointsBalanceReply(t *testing.T) {
	store := storage.NewMemory()
	h := testHandler(store, 0)
	ctx := context.Background()

	_ = h.dispatch(ctx, &fakeReplier{}, 3, "erin", conversation.ItemChosen{Name: "Стейк рибай", Price: 1200})
	_ = h.dispatch(ctx, &fakeReplier{}, 3, "erin", conversation.Checkout{})

	r := &fakeReplier{}
	if err := h.dispatch(ctx, r, 3, "erin", conversation.ShowPoints{}); err != nil {
		t.Fatalf("points: %v", err)
	}
	if !strings.Contains(r.joined(), "10 баллов") {
		t.Fatalf("balance reply = %q", r.joined())
	}
}

// flakyStore fails the first write of each kind, then delegates.
type flakyStore struct {
	storage.Storage
	orderFailed       bool
	reservationFailed bool
}

func (s *flakyStore) CreateOrder(ctx context.Context, d storage.OrderDraft, award int) (int64, error) {
	if !s.orderFailed {
		s.orderFailed = true
		return 0, storage.ErrUnavailable
	}
	return s.Storage.CreateOrder(ctx, d, award)
}

func (s *flakyStore) CreateReservation(ctx context.Context, d storage.ReservationDraft, award int) (int64, error) {
	if !s.reservationFailed {
		s.reservationFailed = true
		return 0, storage.ErrUnavailable
	}
	return s.Storage.CreateReservation(ctx, d, award)
}

func TestCartSurvivesFailedCheckout(t *testing.T) {
	store := &flakyStore{Storage: storage.NewMemory()}
	h := testHandler(store, 0)
	ctx := context.Background()

	r := &fakeReplier{}
	_ = h.dispatch(ctx, r, 11, "grace", conversation.ItemChosen{Name: "Тирамису", Price: 380})

	if err := h.dispatch(ctx, r, 11, "grace", conversation.Checkout{}); err == nil {
		t.Fatal("expected the first checkout to fail")
	}
	if !strings.Contains(r.joined(), "Попробуйте ещё раз") {
		t.Fatalf("expected failure message, got %q", r.msgs)
	}

	// The cart must still hold the item, so a retry completes the order.
	r = &fakeReplier{}
	if err := h.dispatch(ctx, r, 11, "grace", conversation.Checkout{}); err != nil {
		t.Fatalf("retry: %v", err)
	}

	orders, _ := store.ListOrders(ctx, 10)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1 after retry", len(orders))
	}
	if orders[0].Item != "Тирамису" {
		t.Fatalf("item = %q, want the retained cart item", orders[0].Item)
	}
	points, _ := store.Points(ctx, 11)
	if points != 10 {
		t.Fatalf("points = %d, want a single award of 10", points)
	}
}

func TestReservationInputSurvivesFailedBooking(t *testing.T) {
	store := &flakyStore{Storage: storage.NewMemory()}
	h := testHandler(store, 0)
	ctx := context.Background()
	r := &fakeReplier{}

	_ = h.dispatch(ctx, r, 12, "heidi", conversation.ReserveTable{})
	_ = h.dispatch(ctx, r, 12, "heidi", conversation.FreeText{Text: "2025-12-31"})
	_ = h.dispatch(ctx, r, 12, "heidi", conversation.FreeText{Text: "19:30"})

	if err := h.dispatch(ctx, r, 12, "heidi", conversation.FreeText{Text: "3"}); err == nil {
		t.Fatal("expected the first booking to fail")
	}

	// Date and time were kept; resending the party size finishes the booking.
	if err := h.dispatch(ctx, r, 12, "heidi", conversation.FreeText{Text: "3"}); err != nil {
		t.Fatalf("retry: %v", err)
	}

	reservations, _ := store.ListReservations(ctx, 10)
	if len(reservations) != 1 {
		t.Fatalf("reservations = %d, want 1 after retry", len(reservations))
	}
	res := reservations[0]
	if res.Date != "2025-12-31" || res.Time != "19:30" || res.People != 3 {
		t.Fatalf("reservation = %+v, want the retained inputs", res)
	}
	points, _ := store.Points(ctx, 12)
	if points != 5 {
		t.Fatalf("points = %d, want a single award of 5", points)
	}
}

type failingStore struct {
	storage.Storage
}

func (failingStore) GetOrCreateUser(context.Context, int64, string) (storage.User, error) {
	return storage.User{}, storage.ErrUnavailable
}

func TestStorageFailureSurfacedToUser(t *testing.T) {
	h := testHandler(failingStore{}, 0)
	r := &fakeReplier{}

	err := h.dispatch(context.Background(), r, 5, "frank", conversation.Start{})
	if err == nil {
		t.Fatal("expected an error from dispatch")
	}
	if len(r.msgs) != 1 || !strings.Contains(r.msgs[0], "Попробуйте ещё раз") {
		t.Fatalf("expected failure message, got %q", r.msgs)
	}
}

func TestParseItemPayload(t *testing.T) {
	tests := []struct {
		payload string
		name    string
		price   int
		ok      bool
	}{
		{"Тирамису|380", "Тирамису", 380, true},
		{"Тирамису", "", 0, false},
		{"|380", "", 0, false},
		{"Тирамису|дорого", "", 0, false},
		{"Тирамису|-5", "", 0, false},
	}
	for _, tt := range tests {
		name, price, ok := parseItemPayload(tt.payload)
		if name != tt.name || price != tt.price || ok != tt.ok {
			t.Errorf("parseItemPayload(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.payload, name, price, ok, tt.name, tt.price, tt.ok)
		}
	}
}
