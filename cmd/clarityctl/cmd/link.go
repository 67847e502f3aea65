package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	plaidagg "github.com/clarity-cash/claritycash/aggregator/plaid"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/identity"
	"github.com/clarity-cash/claritycash/link"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a sandbox bank account",
	Long: `Runs a full linking attempt against the sandbox aggregator: fetch a
link token from the server, drive the widget controller to a terminal
state, and exchange the resulting public token for a stored credential.`,
	RunE: runLink,
}

func runLink(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	api, stored, err := apiClient()
	if err != nil {
		return err
	}

	clientID := os.Getenv("PLAID_CLIENT_ID")
	secret := os.Getenv("PLAID_SANDBOX_SECRET")
	if clientID == "" || secret == "" {
		return fmt.Errorf("PLAID_CLIENT_ID and PLAID_SANDBOX_SECRET must be set to mint a sandbox public token")
	}
	sandbox := plaidagg.NewClient(plaidagg.Config{
		ClientID:   clientID,
		Secret:     secret,
		Env:        "sandbox",
		ClientName: "Clarity Cash",
	})

	// Session lifecycle mirrors the interactive client: a watcher owns the
	// current session and a sign-out wipes the local token store.
	store := link.NewMemoryTokenStore()
	defer store.Close()

	watcher := identity.NewWatcher()
	watcher.OnSignOut(func() {
		_ = store.Clear(context.Background())
	})
	watcher.Set(&domain.Session{
		Identity:  domain.UserIdentity{UID: stored.UID, Email: stored.Email},
		IDToken:   stored.IDToken,
		ExpiresAt: stored.ExpiresAt,
	})

	tokenResp, err := api.CreateLinkToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to create link token: %w", err)
	}
	grant := &domain.LinkTokenGrant{
		AttemptID:  uuid.NewString(),
		UserID:     stored.UID,
		LinkToken:  tokenResp.LinkToken,
		Expiration: tokenResp.Expiration,
	}
	if err := store.Put(ctx, grant); err != nil {
		return fmt.Errorf("failed to cache link token: %w", err)
	}

	results := make(chan link.Result, 1)
	controller := link.NewController(store,
		func(ctx context.Context, publicToken string) (string, error) {
			resp, exchErr := api.ExchangePublicToken(ctx, publicToken)
			if exchErr != nil {
				return "", exchErr
			}
			return resp.ItemID, nil
		},
		func(res link.Result) { results <- res },
	)
	controller.HandleToken(ctx, grant)

	// The driver takes the place of the browser widget: open, then exactly
	// one success or exit event.
	link.NewSandboxDriver(sandbox).Run(ctx, controller)
	<-controller.Done()
	defer controller.Teardown()

	result := <-results
	switch {
	case result.State == link.StateSucceeded && result.Err == nil:
		fmt.Printf("Linked item %s\n", result.ItemID)
		return nil
	case result.State == link.StateSucceeded:
		return fmt.Errorf("link succeeded but exchange failed: %w", result.Err)
	case result.Err != nil:
		return fmt.Errorf("link attempt exited: %w", result.Err)
	default:
		return fmt.Errorf("link attempt exited before completing")
	}
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
