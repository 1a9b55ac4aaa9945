// Package locales keeps every user-visible string in one place.
package locales

// Main reply keyboard buttons.
const (
	BtnMenu    = "🍽 Меню"
	BtnReserve = "🪑 Забронировать"
	BtnPoints  = "🧾 Мои баллы"
)

const (
	Greeting = "Привет! Я помогу оформить заказ или забронировать столик в вашем ресторане."

	ChooseCategory = "Выберите категорию:"
	// CategoryHeader takes the category name.
	CategoryHeader = "Категория: %s"
	// ItemButton takes item name and price.
	ItemButton = "%s — %d₽"
	// ItemAdded takes item name and price.
	ItemAdded = "Добавлено в корзину: %s — %d₽. Нажмите ещё раз на «🍽 Меню» чтобы добавить новое или /checkout для оформления."

	EmptyCart = "Корзина пуста. Добавьте блюда через меню."
	// OrderCreated takes the order id and the point award.
	OrderCreated = "Заказ #%d создан. Спасибо! Вы получили +%d баллов."

	AskReservationDate   = "Введите дату бронирования в формате YYYY-MM-DD (пример: 2025-12-31):"
	AskReservationTime   = "Введите время бронирования (HH:MM):"
	AskReservationPeople = "Введите количество человек:"
	// ReservationCreated takes the reservation id, date, time, people, and the point award.
	ReservationCreated = "Бронирование #%d создано: %s %s, %d чел. Спасибо! +%d баллов."

	// PointsBalance takes the current balance.
	PointsBalance = "У вас %d баллов."

	Help     = "/start — запустить бота\n/checkout — оформить текущую позицию в корзине\n/admin_orders — (админ) список заказов и бронирований."
	Fallback = "Используйте меню: /start или кнопки. Для оформления заказа используйте /checkout."

	NoPermission   = "Недостаточно прав."
	StorageFailure = "Не получилось сохранить данные. Попробуйте ещё раз позже."

	AdminOrdersHeader       = "Последние заказы:"
	AdminNoOrders           = "Заказов нет."
	AdminReservationsHeader = "Последние бронирования:"
	AdminNoData             = "Данных нет."
	UnsupportedAction       = "Неподдерживаемое действие"
)
