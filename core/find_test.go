package core

import (
	"errors"
	"testing"
)

func TestFindCity(t *testing.T) {
	cities := []City{
		{ID: "a1", Name: "San Francisco"},
		{ID: "b2", Name: "New York City"},
	}

	city, ok := FindCity(cities, "New York City")
	if !ok {
		t.Fatalf("expected match for New York City")
	}
	if city.ID != "b2" {
		t.Fatalf("unexpected city id: %s", city.ID)
	}

	if _, ok := FindCity(cities, "Atlantis"); ok {
		t.Fatalf("expected no match for Atlantis")
	}
	if _, ok := FindCity(nil, "San Francisco"); ok {
		t.Fatalf("expected no match on empty list")
	}
}

func TestFindCityCaseSensitive(t *testing.T) {
	cities := []City{{ID: "a1", Name: "San Francisco"}}
	if _, ok := FindCity(cities, "san francisco"); ok {
		t.Fatalf("match must be case sensitive")
	}
}

func TestFindCityFirstMatchWins(t *testing.T) {
	cities := []City{
		{ID: "first", Name: "Boston"},
		{ID: "second", Name: "Boston"},
	}
	city, ok := FindCity(cities, "Boston")
	if !ok || city.ID != "first" {
		t.Fatalf("expected first match, got %+v ok=%v", city, ok)
	}
}

func TestFindScheduleByRestaurant(t *testing.T) {
	entries := []ScheduleEntry{
		{ID: "s1", Restaurant: Restaurant{ID: "r1", Name: "Curry Up Now"}, Meal: Meal{Name: "Tikka Masala Burrito"}},
		{ID: "s2", Restaurant: Restaurant{ID: "r2", Name: "The Melt"}, Meal: Meal{Name: "Patty Melt"}},
	}

	entry, err := FindScheduleByRestaurant(entries, "The Melt")
	if err != nil {
		t.Fatalf("FindScheduleByRestaurant error: %v", err)
	}
	if entry.ID != "s2" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestFindScheduleByRestaurantMiss(t *testing.T) {
	entries := []ScheduleEntry{
		{ID: "s1", Restaurant: Restaurant{Name: "Curry Up Now"}},
	}
	_, err := FindScheduleByRestaurant(entries, "Nonexistent Kitchen")
	if err == nil {
		t.Fatalf("expected error for missing restaurant")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *core.Error, got %T", err)
	}
}

func TestFindScheduleByMeal(t *testing.T) {
	entries := []ScheduleEntry{
		{ID: "s1", Meal: Meal{ID: "m1", Name: "Spam and Eggs"}, Restaurant: Restaurant{Name: "RestaurantName"}},
	}

	entry, err := FindScheduleByMeal(entries, "Spam and Eggs")
	if err != nil {
		t.Fatalf("FindScheduleByMeal error: %v", err)
	}
	if entry.ID != "s1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	_, err = FindScheduleByMeal(entries, "Green Eggs and Ham")
	if !IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
