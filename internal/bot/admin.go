package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/locales"
	"github.com/m3rciful/bistrobot/internal/logger"
	"github.com/m3rciful/bistrobot/internal/storage"
)

// adminReportLimit caps each section of the /admin_orders report.
const adminReportLimit = 50

// allowAdmin gates privileged commands. An unconfigured admin id means no one
// is privileged; the check never touches storage.
func (h *Handler) allowAdmin(senderID int64) bool {
	return h.adminID != 0 && senderID == h.adminID
}

func (h *Handler) onAdminOrders(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}

	start := time.Now()
	ctx := logger.WithHandler(eventContext(c), "admin_orders")

	err := h.adminReport(ctx, teleReplier{c: c, out: h.out}, user.ID)

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("handler", "admin_orders"),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, "tg", "handler.handled", attrs...)
		return nil
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
	return nil
}

// adminReport replies with the recent orders and reservations, or with a
// denial for non-admins.
func (h *Handler) adminReport(ctx context.Context, r replier, senderID int64) error {
	if !h.allowAdmin(senderID) {
		logger.Warn(ctx, "tg", "admin.denied", slog.Int64("user_id", senderID))
		return r.Reply(locales.NoPermission)
	}

	orders, err := h.store.ListOrders(ctx, adminReportLimit)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			_ = r.Reply(locales.StorageFailure)
		}
		return err
	}
	reservations, err := h.store.ListReservations(ctx, adminReportLimit)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			_ = r.Reply(locales.StorageFailure)
		}
		return err
	}

	return r.Reply(formatAdminReport(orders, reservations))
}

func formatAdminReport(orders []storage.OrderReport, reservations []storage.ReservationReport) string {
	if len(orders) == 0 && len(reservations) == 0 {
		return locales.AdminNoData
	}

	var b strings.Builder
	if len(orders) > 0 {
		b.WriteString(locales.AdminOrdersHeader + "\n")
		for _, o := range orders {
			fmt.Fprintf(&b, "#%d — @%s (%d): %s x%d, %d₽, %s, %s\n",
				o.OrderID, o.Username, o.TgID, o.Item, o.Quantity, o.Total,
				o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
		}
	} else {
		b.WriteString(locales.AdminNoOrders + "\n")
	}

	if len(reservations) > 0 {
		b.WriteString("\n" + locales.AdminReservationsHeader + "\n")
		for _, res := range reservations {
			fmt.Fprintf(&b, "#%d — @%s (%d): %s %s, %d чел, %s\n",
				res.ReservationID, res.Username, res.TgID, res.Date, res.Time,
				res.People, res.Status)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
