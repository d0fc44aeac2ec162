// Package mealpy is a client for the undocumented MealPal web API: it
// authenticates, looks up cities and meal schedules, and places a
// reservation. It is written for a single user driving one account; no
// call is safe to issue concurrently with another on the same Client.
package mealpy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/edmundmok/mealpy/core"
	"github.com/edmundmok/mealpy/internal/httpclient"
)

// DefaultBaseURL is the production MealPal origin.
const DefaultBaseURL = "https://secure.mealpal.com"

const (
	loginPath        = "/1/login"
	citiesPath       = "/1/functions/getCitiesWithNeighborhoods"
	menuPathFormat   = "/api/v1/cities/%s/product_offerings/lunch/menu"
	reservationsPath = "/api/v2/reservations"
	kitchenPath      = "/1/functions/checkKitchen3"
)

// Client talks to the five MealPal endpoints. The session lives in the
// underlying HTTP client's cookie jar; a Client with a fresh jar must
// Login before calling the authenticated endpoints.
type Client struct {
	httpClient *http.Client
	opts       options
}

// New constructs a new Client.
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = httpclient.New(
			httpclient.WithTimeout(o.timeout),
			httpclient.WithJar(o.jar),
		)
	}
	return &Client{
		httpClient: o.httpClient,
		opts:       o,
	}
}

// BaseURL reports the service origin this client is bound to.
func (c *Client) BaseURL() string { return c.opts.baseURL }

// Jar exposes the cookie jar carrying the session, nil if none.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Login authenticates with the service. On success the session cookies
// land in the jar and every subsequent call carries them. Any non-2xx
// response is an authentication error.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload := loginRequest{Username: email, Password: password}
	resp, err := c.do(ctx, http.MethodPost, loginPath, payload)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.NewError(core.ErrAuthentication, "mealpal: login rejected",
			core.WithStatus(resp.StatusCode))
	}
	return nil
}

// ListCities fetches every city the service operates in.
func (c *Client) ListCities(ctx context.Context) ([]core.City, error) {
	resp, err := c.do(ctx, http.MethodPost, citiesPath, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus(resp, "list cities"); err != nil {
		return nil, err
	}
	var body citiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode cities response: %w", err)
	}
	return body.Result, nil
}

// GetSchedules fetches the current day's menu for one city. Requires a
// valid session for the production service.
func (c *Client) GetSchedules(ctx context.Context, cityID string) ([]core.ScheduleEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf(menuPathFormat, cityID), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus(resp, "get schedules"); err != nil {
		return nil, err
	}
	var body menuResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode menu response: %w", err)
	}
	return body.Schedules, nil
}

// Reserve submits one reservation and returns the HTTP status code.
// The service does not distinguish its failure modes in a way this layer
// can interpret, so callers treat 200 as success and anything else as a
// retryable outcome.
func (c *Client) Reserve(ctx context.Context, scheduleID, pickupTime string) (int, error) {
	payload := reservationRequest{
		Quantity:   1,
		ScheduleID: scheduleID,
		PickupTime: pickupTime,
		Source:     "Web",
	}
	resp, err := c.do(ctx, http.MethodPost, reservationsPath, payload)
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	return resp.StatusCode, nil
}

// CurrentMeal reports the active reservation, nil when there is none.
func (c *Client) CurrentMeal(ctx context.Context) (*core.Reservation, error) {
	resp, err := c.do(ctx, http.MethodPost, kitchenPath, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := checkStatus(resp, "check kitchen"); err != nil {
		return nil, err
	}
	var body kitchenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode kitchen response: %w", err)
	}
	return body.Reservation, nil
}

// CancelCurrentMeal is not implemented by the remote service.
func (c *Client) CancelCurrentMeal(ctx context.Context) error {
	return core.NewError(core.ErrUnsupported, "mealpal: cancellation is not supported by the service")
}

// CityByName resolves a city name to its record via ListCities.
func (c *Client) CityByName(ctx context.Context, name string) (core.City, error) {
	cities, err := c.ListCities(ctx)
	if err != nil {
		return core.City{}, err
	}
	city, ok := core.FindCity(cities, name)
	if !ok {
		return core.City{}, core.NotFound("city", name)
	}
	return city, nil
}

// SchedulesByCityName fetches the menu for a city given its name.
func (c *Client) SchedulesByCityName(ctx context.Context, cityName string) ([]core.ScheduleEntry, error) {
	city, err := c.CityByName(ctx, cityName)
	if err != nil {
		return nil, err
	}
	return c.GetSchedules(ctx, city.ID)
}

// ScheduleByRestaurant resolves a restaurant name to today's schedule
// entry in the given city.
func (c *Client) ScheduleByRestaurant(ctx context.Context, restaurant, cityName string) (core.ScheduleEntry, error) {
	entries, err := c.SchedulesByCityName(ctx, cityName)
	if err != nil {
		return core.ScheduleEntry{}, err
	}
	return core.FindScheduleByRestaurant(entries, restaurant)
}

// ScheduleByMeal is ScheduleByRestaurant keyed by meal name.
func (c *Client) ScheduleByMeal(ctx context.Context, meal, cityName string) (core.ScheduleEntry, error) {
	entries, err := c.SchedulesByCityName(ctx, cityName)
	if err != nil {
		return core.ScheduleEntry{}, err
	}
	return core.FindScheduleByMeal(entries, meal)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	buf := &bytes.Buffer{}
	if payload != nil {
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}
	base := strings.TrimRight(c.opts.baseURL, "/")
	req, err := http.NewRequestWithContext(ctx, method, base+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", base)
	req.Header.Set("Referer", base+"/login")
	if c.opts.userAgent != "" {
		req.Header.Set("User-Agent", c.opts.userAgent)
	}
	for k, v := range c.opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.NewError(core.ErrCanceled, "mealpal: request canceled", core.WithWrapped(err))
		}
		return nil, core.NewError(core.ErrTransient, "mealpal: request failed",
			core.WithRetryable(true), core.WithWrapped(err))
	}
	return resp, nil
}

// checkStatus turns a non-2xx read response into a service error carrying
// a bounded slice of the body for diagnostics.
func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return core.NewError(core.ErrService,
		fmt.Sprintf("mealpal: %s: %s: %s", op, resp.Status, strings.TrimSpace(string(data))),
		core.WithStatus(resp.StatusCode))
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
