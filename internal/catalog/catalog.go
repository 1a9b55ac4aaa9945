// Package catalog is the static restaurant menu: ordered categories mapping
// to priced items. Prices are integers in currency minor units.
package catalog

// Item is a single menu position.
type Item struct {
	Name  string
	Price int
}

var categories = []string{"Закуски", "Основные", "Десерты"}

var menu = map[string][]Item{
	"Закуски": {
		{Name: "Брускетта", Price: 320},
		{Name: "Салат Цезарь", Price: 450},
	},
	"Основные": {
		{Name: "Стейк рибай", Price: 1200},
		{Name: "Лосось гриль", Price: 980},
	},
	"Десерты": {
		{Name: "Тирамису", Price: 380},
		{Name: "Панна котта", Price: 340},
	},
}

// Categories returns menu categories in display order.
func Categories() []string {
	return append([]string(nil), categories...)
}

// Items returns the items of a category and whether the category exists.
func Items(category string) ([]Item, bool) {
	items, ok := menu[category]
	if !ok {
		return nil, false
	}
	return append([]Item(nil), items...), true
}
