package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clarity-cash/claritycash/identity/firebase"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		rest, err := toolkitClient()
		if err != nil {
			return err
		}

		session, err := rest.SignIn(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}
		if err := saveSession(session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		fmt.Printf("Signed in as %s (uid %s)\n", session.Identity.Email, session.Identity.UID)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		rest, err := toolkitClient()
		if err != nil {
			return err
		}

		session, err := rest.SignUp(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := saveSession(session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		fmt.Printf("Registered %s (uid %s)\n", session.Identity.Email, session.Identity.UID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearSession(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _, err := apiClient()
		if err != nil {
			return err
		}

		user, err := api.Me(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("uid:   %s\n", user.UID)
		if user.Email != "" {
			fmt.Printf("email: %s\n", user.Email)
		}
		if user.DisplayName != "" {
			fmt.Printf("name:  %s\n", user.DisplayName)
		}
		return nil
	},
}

func promptCredentials() (email, password string, err error) {
	email = loginEmail
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		email, err = reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(email)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return email, string(raw), nil
}

func toolkitClient() (*firebase.RESTClient, error) {
	apiKey := os.Getenv("FIREBASE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is not set")
	}
	return firebase.NewRESTClient(apiKey, ""), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (prompted if omitted)")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (prompted if omitted)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
