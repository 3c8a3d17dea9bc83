package app

import (
	"errors"
	"fmt"
	"log"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/credential"
	"github.com/iamvkosarev/groq-chat-bot/internal/groq"
	in_memory "github.com/iamvkosarev/groq-chat-bot/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/groq-chat-bot/internal/storage/key-value"
	"github.com/iamvkosarev/groq-chat-bot/internal/usecase"
	"github.com/iamvkosarev/groq-chat-bot/pkg/local"
	"github.com/iamvkosarev/groq-chat-bot/pkg/tokens"
	"github.com/redis/go-redis/v9"
)

func Run(cfg *config.Config) error {
	language := local.Language(cfg.Telegram.Language)

	// Credential resolution comes first: without a key nothing below is
	// wired and no network call can ever be issued.
	apiKey, err := credential.NewResolver(cfg.Credential).Resolve()
	if err != nil {
		if errors.Is(err, credential.ErrCredentialAbsent) {
			return fmt.Errorf("%w\n%s", err, credential.AbsentHelp(cfg.Credential, language))
		}
		return fmt.Errorf("failed to resolve API credential: %w", err)
	}

	groqClient, err := groq.NewClient(cfg.Groq, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create groq client: %w", err)
	}

	var transcriptStorage usecase.TranscriptStorage
	if cfg.Redis.Endpoint != "" {
		rdb := redis.NewClient(
			&redis.Options{
				Addr: cfg.Redis.Endpoint,
			},
		)
		transcriptStorage = key_value.NewTranscriptStorage(rdb, cfg.Redis.TranscriptTTL)
	} else {
		transcriptStorage = in_memory.NewTranscriptStorage()
	}

	chatUsecase := usecase.NewChatUsecase(
		usecase.ChatUsecaseDeps{
			TranscriptStorage: transcriptStorage,
			Completions:       groqClient,
			Tokens:            tokens.NewCounter(),
		}, cfg.Groq,
	)

	groundedUsecase := usecase.NewGroundedUsecase(
		usecase.GroundedUsecaseDeps{
			TranscriptStorage: transcriptStorage,
			Completions:       groqClient,
		}, cfg.Groq,
	)

	bot, err := api.NewBotAPI(cfg.Telegram.APIToken)
	if err != nil {
		return fmt.Errorf("failed to create new bot: %w", err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)

	telegramUsecase, err := usecase.NewTelegramUsecase(
		cfg.Telegram, usecase.TelegramUsecaseDeps{
			Chat:     chatUsecase,
			Grounded: groundedUsecase,
			Bot:      bot,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create telegram usecase: %w", err)
	}

	return telegramUsecase.Run()
}
