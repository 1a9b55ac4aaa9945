package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/catalog"
	"github.com/m3rciful/bistrobot/internal/locales"
)

// Callback uniques for inline buttons.
const (
	cbCategory = "cat"
	cbItem     = "item"
)

// mainMenu builds the persistent reply keyboard with the three entry points.
func mainMenu() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(
		markup.Row(markup.Text(locales.BtnMenu)),
		markup.Row(markup.Text(locales.BtnReserve)),
		markup.Row(markup.Text(locales.BtnPoints)),
	)
	return markup
}

// removeKeyboard hides the reply keyboard for free-text flows.
func removeKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// categoriesMarkup renders one inline button per catalog category.
func categoriesMarkup(categories []string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, markup.Row(markup.Data(cat, cbCategory, cat)))
	}
	markup.Inline(rows...)
	return markup
}

// itemsMarkup renders one inline button per item; the payload carries the
// item name and price so checkout does not re-read the catalog.
func itemsMarkup(items []catalog.Item) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(items))
	for _, it := range items {
		label := fmt.Sprintf(locales.ItemButton, it.Name, it.Price)
		rows = append(rows, markup.Row(markup.Data(label, cbItem, it.Name, strconv.Itoa(it.Price))))
	}
	markup.Inline(rows...)
	return markup
}
