// Package workflow orchestrates the day-selection and dish-decision flow:
// authenticate, discover open days, then for each day gather options and
// history, consult the oracle, run the user confirmation loop and submit
// the approved diff.
package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-menu-assistant/internal/dietapi"
	"ai-menu-assistant/internal/metrics"
	"ai-menu-assistant/internal/notify"
	"ai-menu-assistant/internal/oracle"
	"ai-menu-assistant/internal/prefs"
	"ai-menu-assistant/internal/ui"
)

// Runner holds the workflow's collaborators. Days are processed strictly
// sequentially: each day's accepted adjustments feed the oracle's context
// for the next one, and prompts need a single foreground user.
type Runner struct {
	client   dietapi.Client
	store    *prefs.Store
	adapter  *oracle.Adapter
	interact ui.Interactor
	notifier *notify.Notifier // optional
	metrics  *metrics.Store   // optional
	provider string

	now         func() time.Time
	status      func(string)
	clearStatus func()
	typeOut     func(string)
}

// NewRunner creates a Runner. The notifier and metrics store may be nil.
func NewRunner(
	client dietapi.Client,
	store *prefs.Store,
	adapter *oracle.Adapter,
	interact ui.Interactor,
	notifier *notify.Notifier,
	metricsStore *metrics.Store,
	provider string,
) *Runner {
	return &Runner{
		client:      client,
		store:       store,
		adapter:     adapter,
		interact:    interact,
		notifier:    notifier,
		metrics:     metricsStore,
		provider:    provider,
		now:         time.Now,
		status:      ui.Status,
		clearStatus: ui.ClearStatus,
		typeOut:     ui.TypeOut,
	}
}

// Run executes one full pass: authenticate, discover open days and process
// them in ascending order. A fatal error on any day stops the run; the day
// cursor was not advanced for the failed day, so the next invocation retries
// it.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Authenticate(ctx); err != nil {
		return err
	}

	r.status("Fetching diets...")
	diets, err := r.client.Diets(ctx)
	if err != nil {
		r.clearStatus()
		return err
	}

	days, err := r.OpenDays(ctx, diets)
	if err != nil {
		r.clearStatus()
		return err
	}
	if len(days) == 0 {
		r.clearStatus()
		fmt.Println("No days available to select menu")
		return nil
	}

	for _, day := range days {
		if err := r.ProcessDay(ctx, day, diets); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate exchanges the stored refresh token for an access token. A
// missing or rejected token drops into an interactive re-prompt loop rather
// than failing the run.
func (r *Runner) Authenticate(ctx context.Context) error {
	snapshot, err := r.store.Load()
	if err != nil {
		return err
	}

	var pair *dietapi.TokenPair
	if snapshot.Token == "" {
		fmt.Println("Session refresh token is not set.")
		pair, err = r.promptForToken(ctx)
		if err != nil {
			return err
		}
	} else {
		r.status("Authenticating...")
		pair, err = r.client.RefreshToken(ctx, snapshot.Token)
		if err != nil {
			r.clearStatus()
			log.Printf("Error: %v", err)
			pair, err = r.promptForToken(ctx)
			if err != nil {
				return err
			}
		}
		r.clearStatus()
	}

	// The provider rotates refresh tokens on every exchange; keep the
	// freshest one so the next run still authenticates.
	if pair.RefreshToken != "" && pair.RefreshToken != snapshot.Token {
		if err := r.store.SetToken(pair.RefreshToken); err != nil {
			return err
		}
	}

	r.client.SetToken(pair.Token)
	return nil
}

// UpdateToken interactively replaces the stored refresh token, verifying it
// against the provider before saving.
func (r *Runner) UpdateToken(ctx context.Context) error {
	_, err := r.promptForToken(ctx)
	return err
}

func (r *Runner) promptForToken(ctx context.Context) (*dietapi.TokenPair, error) {
	for {
		token, err := r.interact.Input("Enter your refresh token", false)
		if err != nil {
			return nil, err
		}
		pair, err := r.client.RefreshToken(ctx, token)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}
		if err := r.store.SetToken(token); err != nil {
			return nil, err
		}
		return pair, nil
	}
}
