package dietapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"ai-menu-assistant/internal/config"
	"ai-menu-assistant/internal/shared"
)

const defaultRetryDelay = 10 * time.Second

// Client is an interface for the meal-plan provider API.
type Client interface {
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Diets(ctx context.Context) (*DietList, error)
	Calendar(ctx context.Context, dietID int64, from, to shared.Date) (*Calendar, error)
	DayItems(ctx context.Context, dietID int64, date shared.Date) (*DayItems, error)
	Ingredients(ctx context.Context, dishSizeID int64) (*DishIngredients, error)
	ChangeMenu(ctx context.Context, dietID int64, date shared.Date, change *ChangeMenuRequest) error
	SetToken(token string)
}

// apiClient is the concrete HTTP implementation of the provider client.
type apiClient struct {
	httpClient *http.Client
	config     *config.Config
	token      string
}

// NewClient creates a new provider API client.
func NewClient(cfg *config.Config) Client {
	return &apiClient{
		httpClient: &http.Client{},
		config:     cfg,
	}
}

// SetToken installs the bearer token used on subsequent requests and logs
// its remaining lifetime when it is a readable JWT.
func (c *apiClient) SetToken(token string) {
	c.token = token
	if remaining, err := TokenLifetime(token); err == nil {
		log.Printf("Access token valid for %s", remaining.Round(time.Second))
	}
}

// sendRequest performs one provider call. A rate-limit response is never
// surfaced: the client sleeps for the server-specified delay and retries the
// same request until it gets through or the transport itself fails.
func (c *apiClient) sendRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	for {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Origin", c.config.PanelOrigin)
		req.Header.Set("Accept", "application/json, text/plain, */*")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryDelay(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			log.Printf("Rate limited, retrying in %s", delay)
			time.Sleep(delay)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("api error: status %d, body: %s", resp.StatusCode, data)
		}
		return data, nil
	}
}

func retryDelay(header string) time.Duration {
	if header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryDelay
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (c *apiClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	url := c.config.APIBaseURL + "/refresh_token"
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh token request: %w", err)
	}

	data, err := c.sendRequest(ctx, http.MethodPut, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w body: %s", err, data)
	}
	return &pair, nil
}

// Diets fetches the user's diets.
func (c *apiClient) Diets(ctx context.Context) (*DietList, error) {
	url := c.config.APIBaseURL + "/frontend/secure/my-diets?pagination=false"
	data, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch diets: %w", err)
	}

	var diets DietList
	if err := json.Unmarshal(data, &diets); err != nil {
		return nil, fmt.Errorf("failed to parse diets: %w body: %s", err, data)
	}
	return &diets, nil
}

// Calendar fetches the day states of one diet over a date range.
func (c *apiClient) Calendar(ctx context.Context, dietID int64, from, to shared.Date) (*Calendar, error) {
	url := fmt.Sprintf("%s/frontend/secure/calendar/%d/%s/%s", c.config.APIBaseURL, dietID, from, to)
	data, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar for diet %d: %w", dietID, err)
	}

	var calendar Calendar
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w body: %s", err, data)
	}
	return &calendar, nil
}

// DayItems fetches the dish items of one diet day.
func (c *apiClient) DayItems(ctx context.Context, dietID int64, date shared.Date) (*DayItems, error) {
	url := fmt.Sprintf("%s/v2/frontend/secure/calendar/%d/days/%s/items", c.config.APIBaseURL, dietID, date)
	data, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu for %s: %w", date, err)
	}

	var items DayItems
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse day items: %w body: %s", err, data)
	}
	return &items, nil
}

// Ingredients fetches the ingredient record for one dish size. The endpoint
// must return exactly one record. Ingredient strings are stripped of any
// embedded HTML before use.
func (c *apiClient) Ingredients(ctx context.Context, dishSizeID int64) (*DishIngredients, error) {
	url := fmt.Sprintf("%s/v2/frontend/ingredients_by_dish_sizes/list?dishSizeIds[]=%d", c.config.APIBaseURL, dishSizeID)
	data, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients for dish size %d: %w", dishSizeID, err)
	}

	var list IngredientsList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse ingredients: %w body: %s", err, data)
	}
	if len(list.Members) != 1 {
		return nil, fmt.Errorf("expected one ingredient record for dish size %d, got %d", dishSizeID, len(list.Members))
	}

	record := list.Members[0]
	record.Ingredients = CleanIngredients(record.Ingredients)
	return &record, nil
}

// ChangeMenu submits a confirmed menu diff. This is a non-idempotent write;
// callers invoke it at most once per confirmed diff.
func (c *apiClient) ChangeMenu(ctx context.Context, dietID int64, date shared.Date, change *ChangeMenuRequest) error {
	url := fmt.Sprintf("%s/v2/frontend/secure/calendar/%d/days/%s/change-menu", c.config.APIBaseURL, dietID, date)
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal menu change: %w", err)
	}
	if _, err := c.sendRequest(ctx, http.MethodPut, url, body); err != nil {
		return fmt.Errorf("failed to submit menu change for %s: %w", date, err)
	}
	return nil
}

// HydrateIngredients fetches and attaches the ingredient record of every
// enabled option that lacks one. A single fetch failure aborts the whole
// day; no partially hydrated day is processed further. The status callback
// receives progress messages and may be nil.
func HydrateIngredients(ctx context.Context, c Client, day *DayItems, status func(string)) error {
	for i := range day.DietElements.Members {
		item := &day.DietElements.Members[i]
		for _, option := range item.EnabledOptions() {
			if option.Ingredients != nil {
				continue
			}
			if status != nil {
				status(fmt.Sprintf("Fetching ingredients for %s", option.Name))
			}
			ingredients, err := c.Ingredients(ctx, option.DishSizeID)
			if err != nil {
				return fmt.Errorf("while fetching ingredients: %w", err)
			}
			option.Ingredients = ingredients
		}
	}
	return nil
}
