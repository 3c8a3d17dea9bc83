// Package credential locates the Groq API key. Sources are tried in order:
// process environment, a local secrets file, an interactive masked prompt.
// The first non-empty value wins; no format validation is done here.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/pkg/local"
	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/term"
)

var ErrCredentialAbsent = errors.New("no Groq API key found")

var messageAbsentHelp = local.NewSet(
	`You can provide a Groq API key in three ways:
1. Set the %s environment variable
2. Put %s = "<your key>" into %s
3. Run the bot in a terminal and enter the key when prompted`,
	local.NewTrans(
		local.Rus,
		`Передать ключ Groq API можно тремя способами:
1. Задать переменную окружения %s
2. Записать %s = "<ваш ключ>" в %s
3. Запустить бота в терминале и ввести ключ по запросу`,
	),
)

// AbsentHelp explains every acquisition path; app.Run prints it before
// halting when no key was found.
func AbsentHelp(cfg config.Credential, language local.Language) string {
	return messageAbsentHelp.Format(language, cfg.EnvName, cfg.EnvName, cfg.SecretsPath)
}

type secretsFile struct {
	GroqAPIKey string `toml:"GROQ_API_KEY"`
}

type Resolver struct {
	cfg config.Credential

	// prompt is replaced in tests
	prompt func() (string, error)
}

func NewResolver(cfg config.Credential) *Resolver {
	r := &Resolver{cfg: cfg}
	r.prompt = r.promptTerminal
	return r
}

func (r *Resolver) Resolve() (string, error) {
	if key := strings.TrimSpace(os.Getenv(r.cfg.EnvName)); key != "" {
		return key, nil
	}
	if key, err := r.fromSecretsFile(); err == nil && key != "" {
		return key, nil
	}
	if key, err := r.prompt(); err == nil && key != "" {
		return key, nil
	}
	return "", ErrCredentialAbsent
}

func (r *Resolver) fromSecretsFile() (string, error) {
	if _, err := os.Stat(r.cfg.SecretsPath); err != nil {
		return "", ErrCredentialAbsent
	}
	var secrets secretsFile
	if err := cleanenv.ReadConfig(r.cfg.SecretsPath, &secrets); err != nil {
		return "", fmt.Errorf("failed to read secrets file %s: %w", r.cfg.SecretsPath, err)
	}
	return strings.TrimSpace(secrets.GroqAPIKey), nil
}

func (r *Resolver) promptTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrCredentialAbsent
	}
	fmt.Fprintf(os.Stderr, "Enter your Groq API key: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read key from terminal: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
