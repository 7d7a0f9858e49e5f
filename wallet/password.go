package wallet

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	"github.com/pkg/errors"
)

// PasswordFunc supplies the passphrase for the keystore with the given id.
type PasswordFunc func(id string) (string, error)

// StaticPassword uses pass when it is set and prompts otherwise.
func StaticPassword(pass string) PasswordFunc {
	return func(id string) (string, error) {
		if pass != "" {
			return pass, nil
		}
		return PromptPassword(id)
	}
}

func PromptPassword(id string) (string, error) {
	fd := os.Stdin.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return "", errors.Errorf("no password for %s and stdin is not a terminal", id)
	}
	t, err := tty.Open()
	if err != nil {
		return "", errors.Wrap(err, "open tty")
	}
	defer t.Close()

	fmt.Fprintf(os.Stderr, "Enter password for %q: ", id)
	pass, err := t.ReadPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return pass, nil
}
