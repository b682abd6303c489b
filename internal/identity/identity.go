// Package identity resolves which user a session belongs to.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/abelbrown/herbal/internal/store"
)

// UserKey stores the signed-in user name.
const UserKey = "loggedInUser"

// EnvUser overrides the stored user.
const EnvUser = "HERBAL_USER"

// ErrNoUser means nobody is signed in.
var ErrNoUser = errors.New("no user signed in; run `herbal login`")

// Resolve picks the user from, in order: flag, the env value, then the
// stored login. Whitespace-only values count as unset.
func Resolve(kv store.KV, flag, env string) (string, error) {
	if u := strings.TrimSpace(flag); u != "" {
		return u, nil
	}
	if u := strings.TrimSpace(env); u != "" {
		return u, nil
	}
	u, ok, err := kv.Get(UserKey)
	if err != nil {
		return "", fmt.Errorf("read signed-in user: %w", err)
	}
	if u = strings.TrimSpace(u); !ok || u == "" {
		return "", ErrNoUser
	}
	return u, nil
}

// Login records name as the signed-in user.
func Login(kv store.KV, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("user name required")
	}
	if err := kv.Set(UserKey, name); err != nil {
		return fmt.Errorf("save signed-in user: %w", err)
	}
	return nil
}

// Logout forgets the signed-in user. Favorites stay stored.
func Logout(kv store.KV) error {
	if err := kv.Delete(UserKey); err != nil {
		return fmt.Errorf("clear signed-in user: %w", err)
	}
	return nil
}

// PromptForm builds the interactive login form; the entered name lands in
// *name.
func PromptForm(name *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Who is browsing?").
				Description("Favorites are kept per user name.").
				Key("user").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("enter a name")
					}
					return nil
				}).
				Value(name),
		),
	)
}

// Prompt asks for a user name on the terminal.
func Prompt() (string, error) {
	var name string
	if err := PromptForm(&name).Run(); err != nil {
		return "", fmt.Errorf("login prompt: %w", err)
	}
	return strings.TrimSpace(name), nil
}
