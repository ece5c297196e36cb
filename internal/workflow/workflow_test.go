package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/oracle"
	"ai-menu-assistant/internal/prefs"
	"ai-menu-assistant/internal/shared"
)

type calendarCall struct {
	dietID   int64
	from, to shared.Date
}

// fakeClient is an in-memory dietapi.Client. Day items are keyed by
// "dietID/date"; unknown days resolve to an empty menu.
type fakeClient struct {
	diets       *dietapi.DietList
	calendars   map[int64]*dietapi.Calendar
	days        map[string]*dietapi.DayItems
	ingredients map[int64]*dietapi.DishIngredients

	refreshPair *dietapi.TokenPair
	refreshErr  error

	token         string
	refreshedWith []string
	calendarCalls []calendarCall
	menuChanges   []*dietapi.ChangeMenuRequest
}

func dayKey(dietID int64, date shared.Date) string {
	return fmt.Sprintf("%d/%s", dietID, date)
}

func (f *fakeClient) RefreshToken(ctx context.Context, refreshToken string) (*dietapi.TokenPair, error) {
	f.refreshedWith = append(f.refreshedWith, refreshToken)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshPair != nil {
		return f.refreshPair, nil
	}
	return &dietapi.TokenPair{Token: "access-token"}, nil
}

func (f *fakeClient) Diets(ctx context.Context) (*dietapi.DietList, error) {
	return f.diets, nil
}

func (f *fakeClient) Calendar(ctx context.Context, dietID int64, from, to shared.Date) (*dietapi.Calendar, error) {
	f.calendarCalls = append(f.calendarCalls, calendarCall{dietID: dietID, from: from, to: to})
	if calendar, ok := f.calendars[dietID]; ok {
		return calendar, nil
	}
	return &dietapi.Calendar{Days: map[string]dietapi.CalendarDay{}}, nil
}

func (f *fakeClient) DayItems(ctx context.Context, dietID int64, date shared.Date) (*dietapi.DayItems, error) {
	if day, ok := f.days[dayKey(dietID, date)]; ok {
		return day, nil
	}
	return &dietapi.DayItems{}, nil
}

func (f *fakeClient) Ingredients(ctx context.Context, dishSizeID int64) (*dietapi.DishIngredients, error) {
	if ingredients, ok := f.ingredients[dishSizeID]; ok {
		return ingredients, nil
	}
	return nil, fmt.Errorf("no ingredients for dish size %d", dishSizeID)
}

func (f *fakeClient) ChangeMenu(ctx context.Context, dietID int64, date shared.Date, change *dietapi.ChangeMenuRequest) error {
	f.menuChanges = append(f.menuChanges, change)
	return nil
}

func (f *fakeClient) SetToken(token string) {
	f.token = token
}

// scriptedInteractor replays canned answers; running past a script is a test
// bug and fails loudly.
type scriptedInteractor struct {
	t        *testing.T
	selects  []int
	confirms []bool
	inputs   []string

	selectLabels   []string
	selectDefaults []int
	confirmLabels  []string
}

func (s *scriptedInteractor) Select(label string, options []string, defaultIndex int) (int, error) {
	if len(s.selects) == 0 {
		s.t.Fatalf("Unexpected Select(%q)", label)
	}
	s.selectLabels = append(s.selectLabels, label)
	s.selectDefaults = append(s.selectDefaults, defaultIndex)
	choice := s.selects[0]
	s.selects = s.selects[1:]
	return choice, nil
}

func (s *scriptedInteractor) Confirm(label string) (bool, error) {
	if len(s.confirms) == 0 {
		s.t.Fatalf("Unexpected Confirm(%q)", label)
	}
	s.confirmLabels = append(s.confirmLabels, label)
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *scriptedInteractor) Input(label string, allowEmpty bool) (string, error) {
	if len(s.inputs) == 0 {
		s.t.Fatalf("Unexpected Input(%q)", label)
	}
	answer := s.inputs[0]
	s.inputs = s.inputs[1:]
	return answer, nil
}

// stubBackend returns a fixed oracle response.
type stubBackend struct {
	response string
}

func (s *stubBackend) Complete(ctx context.Context, system, payload string, schema *oracle.Schema) (string, shared.TokenUsage, error) {
	return s.response, shared.TokenUsage{TotalTokens: 10}, nil
}

func newTestStore(t *testing.T) *prefs.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "workflow_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := prefs.NewStore(filepath.Join(tempDir, "preferences.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func newTestRunner(t *testing.T, client *fakeClient, store *prefs.Store, backend oracle.Backend, interact *scriptedInteractor) *Runner {
	t.Helper()
	runner := NewRunner(client, store, oracle.NewAdapter(backend), interact, nil, nil, "openai")
	runner.status = func(string) {}
	runner.clearStatus = func() {}
	runner.typeOut = func(string) {}
	runner.now = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.Local) }
	return runner
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("StoredTokenRotates", func(t *testing.T) {
		store := newTestStore(t)
		if err := store.SetToken("old-refresh"); err != nil {
			t.Fatalf("Failed to seed token: %v", err)
		}
		client := &fakeClient{refreshPair: &dietapi.TokenPair{Token: "access-token", RefreshToken: "new-refresh"}}
		runner := newTestRunner(t, client, store, &stubBackend{}, &scriptedInteractor{t: t})

		if err := runner.Authenticate(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if client.token != "access-token" {
			t.Errorf("Expected access token installed, got '%s'", client.token)
		}
		if len(client.refreshedWith) != 1 || client.refreshedWith[0] != "old-refresh" {
			t.Errorf("Unexpected refresh calls: %v", client.refreshedWith)
		}

		snapshot, _ := store.Load()
		if snapshot.Token != "new-refresh" {
			t.Errorf("Expected rotated refresh token stored, got '%s'", snapshot.Token)
		}
	})

	t.Run("MissingTokenPrompts", func(t *testing.T) {
		store := newTestStore(t)
		client := &fakeClient{refreshPair: &dietapi.TokenPair{Token: "access-token"}}
		interact := &scriptedInteractor{t: t, inputs: []string{"typed-refresh"}}
		runner := newTestRunner(t, client, store, &stubBackend{}, interact)

		if err := runner.Authenticate(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if client.token != "access-token" {
			t.Errorf("Expected access token installed, got '%s'", client.token)
		}

		snapshot, _ := store.Load()
		if snapshot.Token != "typed-refresh" {
			t.Errorf("Expected typed token stored, got '%s'", snapshot.Token)
		}
	})

	t.Run("RejectedTokenRepromptsUntilAccepted", func(t *testing.T) {
		store := newTestStore(t)
		if err := store.SetToken("expired"); err != nil {
			t.Fatalf("Failed to seed token: %v", err)
		}
		client := &fakeClient{refreshPair: &dietapi.TokenPair{Token: "access-token"}}
		interact := &scriptedInteractor{t: t, inputs: []string{"first-try", "second-try"}}
		runner := newTestRunner(t, client, store, &stubBackend{}, interact)

		// Stored token fails, first typed token fails, second succeeds.
		calls := 0
		runner.client = &countingClient{fakeClient: client, failUntil: 2, calls: &calls}

		if err := runner.Authenticate(ctx); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("Expected 3 refresh attempts, got %d", calls)
		}

		snapshot, _ := store.Load()
		if snapshot.Token != "second-try" {
			t.Errorf("Expected accepted token stored, got '%s'", snapshot.Token)
		}
	})
}

// countingClient fails the first failUntil refresh calls.
type countingClient struct {
	*fakeClient
	failUntil int
	calls     *int
}

func (c *countingClient) RefreshToken(ctx context.Context, refreshToken string) (*dietapi.TokenPair, error) {
	*c.calls++
	if *c.calls <= c.failUntil {
		return nil, errors.New("api error: status 401")
	}
	return c.fakeClient.RefreshToken(ctx, refreshToken)
}
