package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/edmundmok/mealpy/config"
	"github.com/edmundmok/mealpy/core"
	"github.com/edmundmok/mealpy/session"
)

// credentialSource resolves the account password in order: environment,
// system keyring (when enabled), interactive prompt. The prompt result
// is written back to the keyring so the next run skips it.
func credentialSource(cfg config.Config) session.CredentialSource {
	return func(ctx context.Context) (core.Credentials, error) {
		email := cfg.EmailAddress
		if env := os.Getenv("MEALPAL_EMAIL"); env != "" {
			email = env
		}

		if env := os.Getenv("MEALPAL_PASSWORD"); env != "" {
			return core.Credentials{Email: email, Password: env}, nil
		}

		if cfg.UseKeyring {
			if password, err := config.PasswordFromKeyring(email); err == nil && password != "" {
				return core.Credentials{Email: email, Password: password}, nil
			}
		}

		password, err := promptPassword(email)
		if err != nil {
			return core.Credentials{}, err
		}
		if cfg.UseKeyring {
			if err := config.SavePassword(email, password); err != nil {
				log.WithError(err).Warn("could not store password in keyring")
			}
		}
		return core.Credentials{Email: email, Password: password}, nil
	}
}

func promptPassword(email string) (string, error) {
	fmt.Fprintf(os.Stderr, "MealPal password for %s: ", email)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}
