package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/bistrobot/internal/catalog"
	"github.com/m3rciful/bistrobot/internal/conversation"
	"github.com/m3rciful/bistrobot/internal/locales"
	"github.com/m3rciful/bistrobot/internal/logger"
	"github.com/m3rciful/bistrobot/internal/storage"
)

// apply executes effects in order. A storage failure stops the sequence and
// surfaces the generic failure message to the user.
func (h *Handler) apply(ctx context.Context, r replier, tgID int64, username string, effects []conversation.Effect) error {
	for _, eff := range effects {
		if err := h.applyOne(ctx, r, tgID, username, eff); err != nil {
			if errors.Is(err, storage.ErrUnavailable) {
				_ = r.Reply(locales.StorageFailure)
			}
			return err
		}
	}
	return nil
}

func (h *Handler) applyOne(ctx context.Context, r replier, tgID int64, username string, eff conversation.Effect) error {
	switch e := eff.(type) {
	case conversation.ShowMain:
		// First contact registers the user.
		if _, err := h.store.GetOrCreateUser(ctx, tgID, username); err != nil {
			return err
		}
		return r.Reply(locales.Greeting, mainMenu())

	case conversation.ShowCategories:
		return r.Reply(locales.ChooseCategory, categoriesMarkup(catalog.Categories()))

	case conversation.ShowItems:
		items, ok := catalog.Items(e.Category)
		if !ok {
			return r.Reply(locales.Fallback, mainMenu())
		}
		return r.Reply(fmt.Sprintf(locales.CategoryHeader, e.Category), itemsMarkup(items))

	case conversation.ItemAdded:
		return r.Reply(fmt.Sprintf(locales.ItemAdded, e.Name, e.Price))

	case conversation.EmptyCart:
		return r.Reply(locales.EmptyCart)

	case conversation.PlaceOrder:
		return h.placeOrder(ctx, r, tgID, username, e)

	case conversation.AskDate:
		return r.Reply(locales.AskReservationDate, removeKeyboard())

	case conversation.AskTime:
		return r.Reply(locales.AskReservationTime)

	case conversation.AskPeople:
		return r.Reply(locales.AskReservationPeople)

	case conversation.BookTable:
		return h.bookTable(ctx, r, tgID, username, e)

	case conversation.ReportPoints:
		points, err := h.store.Points(ctx, tgID)
		if err != nil {
			return err
		}
		return r.Reply(fmt.Sprintf(locales.PointsBalance, points))

	case conversation.ShowHelp:
		return r.Reply(locales.Fallback, mainMenu())
	}
	return nil
}

func (h *Handler) placeOrder(ctx context.Context, r replier, tgID int64, username string, e conversation.PlaceOrder) error {
	user, err := h.store.GetOrCreateUser(ctx, tgID, username)
	if err != nil {
		return err
	}

	orderID, err := h.store.CreateOrder(ctx, storage.OrderDraft{
		UserID:   user.ID,
		Item:     e.Item,
		Quantity: 1,
		Total:    e.Price,
	}, h.loyalty.OrderPoints)
	if err != nil {
		return err
	}

	logger.Info(ctx, "storage", "order.created",
		slog.Int64("order_id", orderID),
		slog.String("item", logger.SanitizeLimit(e.Item, 128)),
		slog.Int("total", e.Price),
		slog.Int("points", h.loyalty.OrderPoints),
	)
	return r.Reply(fmt.Sprintf(locales.OrderCreated, orderID, h.loyalty.OrderPoints))
}

func (h *Handler) bookTable(ctx context.Context, r replier, tgID int64, username string, e conversation.BookTable) error {
	user, err := h.store.GetOrCreateUser(ctx, tgID, username)
	if err != nil {
		return err
	}

	resID, err := h.store.CreateReservation(ctx, storage.ReservationDraft{
		UserID: user.ID,
		Date:   e.Date,
		Time:   e.Time,
		People: e.People,
	}, h.loyalty.ReservationPoints)
	if err != nil {
		return err
	}

	logger.Info(ctx, "storage", "reservation.created",
		slog.Int64("reservation_id", resID),
		slog.Int("people", e.People),
		slog.Int("points", h.loyalty.ReservationPoints),
	)
	return r.Reply(
		fmt.Sprintf(locales.ReservationCreated, resID, e.Date, e.Time, e.People, h.loyalty.ReservationPoints),
		mainMenu(),
	)
}
