package mealpy

import "github.com/edmundmok/mealpy/core"

// Wire types for the MealPal HTTP surface. Field names follow the JSON
// the service actually emits; the API is undocumented and may change.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type citiesResponse struct {
	Result []core.City `json:"result"`
}

type menuResponse struct {
	Schedules []core.ScheduleEntry `json:"schedules"`
}

type reservationRequest struct {
	Quantity   int    `json:"quantity"`
	ScheduleID string `json:"schedule_id"`
	PickupTime string `json:"pickup_time"`
	Source     string `json:"source"`
}

type kitchenResponse struct {
	Reservation *core.Reservation `json:"reservation"`
}
