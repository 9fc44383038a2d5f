package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
)

const defaultPrefix = "wmp"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps secrets in the user's password-store under prefix. Only the
// first line of an entry is treated as the secret.
type Store struct {
	prefix string
	run    runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{prefix: prefix, run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := s.entryName(key)
	_, stderr, err := s.run(ctx, value+"\n", "insert", "-m", "-f", name)
	if err != nil {
		return formatError("put", name, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := s.entryName(key)
	stdout, stderr, err := s.run(ctx, "", "show", name)
	if err != nil {
		if strings.Contains(stderr, "is not in the password store") {
			return "", fmt.Errorf("pass get %q: %w", name, domain.ErrSecretNotFound)
		}
		return "", formatError("get", name, err, stderr)
	}

	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := s.entryName(key)
	_, stderr, err := s.run(ctx, "", "rm", "-f", name)
	if err != nil {
		if strings.Contains(stderr, "is not in the password store") {
			return nil
		}
		return formatError("delete", name, err, stderr)
	}

	return nil
}

// entryName maps "wm://A1/password" to "<prefix>/wm/A1/password".
func (s *Store) entryName(key string) string {
	key = strings.TrimSpace(key)
	if scheme, rest, ok := strings.Cut(key, "://"); ok {
		key = scheme + "/" + rest
	}
	return s.prefix + "/" + strings.TrimPrefix(key, "/")
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, name string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, name, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, name, err, stderr)
}
