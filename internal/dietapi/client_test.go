package dietapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-menu-assistant/internal/config"
	"ai-menu-assistant/internal/shared"
)

func newTestClient(serverURL string) Client {
	cfg := &config.Config{
		APIBaseURL:  serverURL,
		PanelOrigin: "https://panel.test",
	}
	c := NewClient(cfg)
	c.SetToken("test-token")
	return c
}

func TestDiets(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Expected bearer token header, got '%s'", got)
			}
			if got := r.Header.Get("Origin"); got != "https://panel.test" {
				t.Errorf("Expected origin header, got '%s'", got)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"hydra:member": [
					{"id": 7, "firstDeliveryDate": "2025-06-01T00:00:00+02:00", "lastDeliveryDate": "2025-06-10T00:00:00+02:00"}
				]
			}`)
		}))
		defer server.Close()

		diets, err := newTestClient(server.URL).Diets(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(diets.Members) != 1 || diets.Members[0].ID != 7 {
			t.Fatalf("Expected one diet with id 7, got %+v", diets.Members)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Diets(context.Background())
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})

	t.Run("RateLimitedThenOK", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"hydra:member": []}`)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Diets(context.Background())
		if err != nil {
			t.Fatalf("Expected rate limit to be retried transparently, got %v", err)
		}
		if calls != 2 {
			t.Errorf("Expected 2 calls (429 then 200), got %d", calls)
		}
	})
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["refreshToken"] != "old-refresh" {
			t.Errorf("Expected refresh token 'old-refresh', got '%s'", body["refreshToken"])
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"token": "new-access", "refreshToken": "new-refresh"}`)
	}))
	defer server.Close()

	pair, err := newTestClient(server.URL).RefreshToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if pair.Token != "new-access" || pair.RefreshToken != "new-refresh" {
		t.Errorf("Unexpected token pair: %+v", pair)
	}
}

func TestIngredients(t *testing.T) {
	t.Run("Singleton", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("dishSizeIds[]"); got != "42" {
				t.Errorf("Expected dishSizeIds[] '42', got '%s'", got)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"hydra:member": [{"ingredients": ["rice", "<b>chicken</b>"]}]}`)
		}))
		defer server.Close()

		record, err := newTestClient(server.URL).Ingredients(context.Background(), 42)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(record.Ingredients) != 2 {
			t.Fatalf("Expected 2 ingredients, got %d", len(record.Ingredients))
		}
		if record.Ingredients[1] != "chicken" {
			t.Errorf("Expected HTML-stripped 'chicken', got '%s'", record.Ingredients[1])
		}
	})

	t.Run("NotSingleton", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"hydra:member": []}`)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Ingredients(context.Background(), 42)
		if err == nil {
			t.Fatal("Expected an error for empty ingredient record list, got nil")
		}
	})
}

func TestChangeMenu(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/v2/frontend/secure/calendar/7/days/2025-06-03/change-menu" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var change ChangeMenuRequest
		if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if len(change.Items) != 1 || change.Items[0].Dish != "/dishes/b" {
			t.Errorf("Unexpected change request: %+v", change)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{}`)
	}))
	defer server.Close()

	change := &ChangeMenuRequest{Items: []ChangeMenuItem{{Dish: "/dishes/b", DishItem: "/dish-items/1"}}}
	date := shared.NewDate(2025, 6, 3)
	if err := newTestClient(server.URL).ChangeMenu(context.Background(), 7, date, change); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestHydrateIngredients(t *testing.T) {
	t.Run("FillsMissingOnly", func(t *testing.T) {
		var fetches int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"hydra:member": [{"ingredients": ["salt"]}]}`)
		}))
		defer server.Close()
		client := newTestClient(server.URL)

		day := &DayItems{DietElements: DietElements{Members: []DishItem{{
			ID: "/dish-items/1",
			Options: []MenuOption{
				{Name: "Hydrated", Enabled: true, DishSizeID: 1, Ingredients: &DishIngredients{Ingredients: []string{"rice"}}},
				{Name: "Missing", Enabled: true, DishSizeID: 2},
				{Name: "Disabled", Enabled: false, DishSizeID: 3},
			},
		}}}}

		status := func(string) { fetches++ }
		if err := HydrateIngredients(context.Background(), client, day, status); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		options := day.DietElements.Members[0].Options
		if options[0].Ingredients.Ingredients[0] != "rice" {
			t.Error("Pre-hydrated option must not be refetched")
		}
		if options[1].Ingredients == nil || options[1].Ingredients.Ingredients[0] != "salt" {
			t.Error("Missing ingredients were not hydrated")
		}
		if options[2].Ingredients != nil {
			t.Error("Disabled option must not be hydrated")
		}
		if fetches != 1 {
			t.Errorf("Expected exactly 1 ingredient fetch, got %d", fetches)
		}
	})

	t.Run("FetchFailureAborts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		day := &DayItems{DietElements: DietElements{Members: []DishItem{{
			Options: []MenuOption{{Name: "Missing", Enabled: true, DishSizeID: 2}},
		}}}}
		err := HydrateIngredients(context.Background(), newTestClient(server.URL), day, nil)
		if err == nil {
			t.Fatal("Expected hydration failure to abort, got nil")
		}
	})
}
