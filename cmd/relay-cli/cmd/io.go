package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/keystore"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green = color.New(color.FgGreen, color.Bold)
	red   = color.New(color.FgRed, color.Bold)
	faint = color.New(color.Faint)
)

func success(w io.Writer, format string, args ...interface{}) {
	green.Fprint(w, "✅ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func failure(w io.Writer, format string, args ...interface{}) {
	red.Fprint(w, "❌ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSecret returns the value of the environment variable env, or prompts
// without echo when env is empty.
func readSecret(env, prompt string) (string, error) {
	if env != "" {
		v, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(v) == "" {
			return "", errno.ErrInvalidInput.Wrapf("environment variable %s is empty", env)
		}
		return strings.TrimSpace(v), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errno.ErrInvalidInput.WithMessage("stdin is not a terminal; use --key-env")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// readKey loads the signing key, from --keystore when set. The caller hands
// it to a pipeline that destroys it.
func readKey() (*secret.PrivateKey, error) {
	if keystorePath != "" {
		keyJSON, err := keystore.LoadFromFile(keystorePath)
		if err != nil {
			return nil, err
		}
		password, err := readSecret(passwordEnv, fmt.Sprintf("请输入 %s 的密码: ", keyJSON.Address.Hex()))
		if err != nil {
			return nil, err
		}
		return keystore.DecryptKey(keyJSON, password)
	}

	raw, err := readSecret(keyEnv, "请输入私钥 (hex): ")
	if err != nil {
		return nil, err
	}
	return secret.Parse(raw)
}

func parseIndex(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errno.ErrInvalidInput.Wrapf("proposal id %q must be a non-negative integer", s)
	}
	return id, nil
}
