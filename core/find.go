package core

// FindCity scans cities for an exact name match. The boolean reports
// whether a match was found; an absent city is not an error. First match
// wins when the service returns duplicate names.
func FindCity(cities []City, name string) (City, bool) {
	for _, c := range cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

// FindScheduleByRestaurant scans entries for the first one whose
// restaurant name matches exactly. A miss is a not_found Error.
func FindScheduleByRestaurant(entries []ScheduleEntry, name string) (ScheduleEntry, error) {
	for _, e := range entries {
		if e.Restaurant.Name == name {
			return e, nil
		}
	}
	return ScheduleEntry{}, NotFound("restaurant", name)
}

// FindScheduleByMeal is FindScheduleByRestaurant keyed by meal name.
func FindScheduleByMeal(entries []ScheduleEntry, name string) (ScheduleEntry, error) {
	for _, e := range entries {
		if e.Meal.Name == name {
			return e, nil
		}
	}
	return ScheduleEntry{}, NotFound("meal", name)
}
