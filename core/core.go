package core

// City identifies one MealPal market.
type City struct {
	ID   string `json:"objectId"`
	Name string `json:"name"`
}

// Restaurant is the kitchen side of a schedule entry.
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Meal is the dish side of a schedule entry.
type Meal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleEntry is one meal offering at one restaurant for the current
// service day. Entries are only meaningful within the city and day they
// were fetched for and must not be cached across lookups.
type ScheduleEntry struct {
	ID         string     `json:"id"`
	Meal       Meal       `json:"meal"`
	Restaurant Restaurant `json:"restaurant"`
}

// Reservation describes the active meal reported by the kitchen endpoint.
type Reservation struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	MealName   string `json:"meal_name"`
	PickupTime string `json:"pickup_time"`
	State      string `json:"state"`
}

// Credentials authenticate one MealPal account. The password is held in
// memory only; persistence is the caller's concern.
type Credentials struct {
	Email    string
	Password string
}
