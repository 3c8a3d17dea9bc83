package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/grounding"
	"github.com/iamvkosarev/groq-chat-bot/pkg/local"
	"github.com/sourcegraph/conc"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandNew   = "new"
)

// How often to refresh the typing indicator while a completion call is in
// flight. Telegram drops the indicator after about five seconds.
const typingRefreshInterval = 4 * time.Second

var (
	MessageCommandStart = local.NewSet(
		"Hi! Write me something to start a conversation, or send a .txt/.csv file to ask questions about its content. Use /new to clear the conversation.",
		local.NewTrans(
			local.Rus,
			"Привет! Напишите что-нибудь, чтобы начать разговор, или пришлите файл .txt/.csv, чтобы задавать вопросы по его содержимому. /new очищает разговор.",
		),
	)
	MessageCommandHelp = local.NewSet(
		"Write a message to chat, send a .txt/.csv file to ask questions about it, /new to clear the conversation and forget the file.",
		local.NewTrans(
			local.Rus,
			"Напишите сообщение для разговора, пришлите файл .txt/.csv для вопросов по нему, /new очищает разговор и забывает файл.",
		),
	)
	MessageCommandUnknown = local.NewSet(
		"I don't know that command",
		local.NewTrans(local.Rus, "Я не знаю такой команды"),
	)
	MessageCleared = local.NewSet(
		"Conversation cleared",
		local.NewTrans(local.Rus, "Разговор очищен"),
	)
	MessageUserNoAccess = local.NewSet(
		"You are not allowed to use this bot",
		local.NewTrans(local.Rus, "У вас нет доступа к этому боту"),
	)
	MessageServerError = local.NewSet(
		"Something went wrong on my side. Try again later",
		local.NewTrans(local.Rus, "Что-то пошло не так. Попробуйте позже"),
	)
	MessageBusy = local.NewSet(
		"I'm still working on your previous message",
		local.NewTrans(local.Rus, "Я ещё работаю над вашим предыдущим сообщением"),
	)
	MessageDocumentLoadedFormat = local.NewSet(
		"Loaded %s. Ask me anything about it, I will answer only from the file content.",
		local.NewTrans(local.Rus, "Файл %s загружен. Задавайте вопросы, я отвечу только по его содержимому."),
	)
	MessageUnsupportedFile = local.NewSet(
		"I can only read .txt and .csv files",
		local.NewTrans(local.Rus, "Я читаю только файлы .txt и .csv"),
	)
	MessageBrokenFile = local.NewSet(
		"I could not decode that file",
		local.NewTrans(local.Rus, "Не получилось прочитать этот файл"),
	)
)

type TelegramUsecaseDeps struct {
	Chat     *ChatUsecase
	Grounded *GroundedUsecase
	Bot      *api.BotAPI
}

// TelegramUsecase is the UI collaborator: it renders transcripts as chat
// messages and feeds user actions into the chat and grounded usecases. A
// telegram chat maps to one session owning its transcript and document.
type TelegramUsecase struct {
	TelegramUsecaseDeps
	cfg          config.Telegram
	lang         local.Language
	allowedUsers map[int64]struct{}
	sessions     map[int64]uuid.UUID
}

func NewTelegramUsecase(cfg config.Telegram, deps TelegramUsecaseDeps) (*TelegramUsecase, error) {
	allowedUsers := make(map[int64]struct{})
	for _, userID := range cfg.AllowedTelegramID {
		allowedUsers[userID] = struct{}{}
	}

	_, err := deps.Bot.Request(
		api.NewSetMyCommands(
			[]api.BotCommand{
				{
					Command:     CommandHelp,
					Description: "Get help",
				},
				{
					Command:     CommandNew,
					Description: "Clear the conversation and forget the uploaded file",
				},
			}...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set bot commands: %w", err)
	}

	return &TelegramUsecase{
		TelegramUsecaseDeps: deps,
		cfg:                 cfg,
		lang:                local.Language(cfg.Language),
		allowedUsers:        allowedUsers,
		sessions:            make(map[int64]uuid.UUID),
	}, nil
}

func (t *TelegramUsecase) Run() error {
	u := api.NewUpdate(0)
	u.Timeout = 60

	updates := t.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if err := t.handleMessage(update); err != nil {
			log.Printf("error handling message: %v", err)
		}
	}
	return nil
}

func (t *TelegramUsecase) handleMessage(update api.Update) error {
	chatID := update.Message.Chat.ID

	if t.cfg.IsNotPublic {
		if _, ok := t.allowedUsers[chatID]; !ok {
			t.sendMessageAndHandleErr(chatID, MessageUserNoAccess.Text(t.lang))
			return nil
		}
	}

	sessionID := t.session(chatID)

	if update.Message.IsCommand() {
		return t.handleCommand(chatID, sessionID, update.Message.Command())
	}
	if update.Message.Document != nil {
		return t.handleDocument(chatID, sessionID, update.Message.Document)
	}
	return t.answer(chatID, sessionID, update.Message.Text)
}

func (t *TelegramUsecase) handleCommand(chatID int64, sessionID uuid.UUID, command string) error {
	var answerText string
	switch command {
	case CommandStart:
		answerText = MessageCommandStart.Text(t.lang)
	case CommandHelp:
		answerText = MessageCommandHelp.Text(t.lang)
	case CommandNew:
		if err := t.Chat.Clear(context.Background(), sessionID); err != nil {
			t.sendMessageAndHandleErr(chatID, MessageServerError.Text(t.lang))
			return fmt.Errorf("failed to clear transcript: %w", err)
		}
		t.Grounded.Forget(sessionID)
		answerText = MessageCleared.Text(t.lang)
	default:
		answerText = MessageCommandUnknown.Text(t.lang)
	}
	t.sendMessageAndHandleErr(chatID, answerText)
	return nil
}

// answer runs the completion call with the typing indicator kept alive
// alongside it.
func (t *TelegramUsecase) answer(chatID int64, sessionID uuid.UUID, text string) error {
	var answerText string
	var submitErr error
	done := make(chan struct{})

	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(done)
			if t.Grounded.HasDocument(sessionID) {
				answerText, submitErr = t.Grounded.Ask(context.Background(), sessionID, text)
			} else {
				answerText, submitErr = t.Chat.Submit(context.Background(), sessionID, text)
			}
		},
	)
	wg.Go(
		func() {
			for {
				if _, err := t.Bot.Request(api.NewChatAction(chatID, api.ChatTyping)); err != nil {
					log.Printf("failed to send chat action: %v", err)
				}
				select {
				case <-done:
					return
				case <-time.After(typingRefreshInterval):
				}
			}
		},
	)
	wg.Wait()

	switch {
	case errors.Is(submitErr, ErrEmptyMessage):
		return nil
	case errors.Is(submitErr, ErrRequestInFlight):
		t.sendMessageAndHandleErr(chatID, MessageBusy.Text(t.lang))
		return nil
	case errors.Is(submitErr, ErrNoDocument):
		t.sendMessageAndHandleErr(chatID, MessageCommandHelp.Text(t.lang))
		return nil
	case submitErr != nil:
		t.sendMessageAndHandleErr(chatID, MessageServerError.Text(t.lang))
		return fmt.Errorf("failed to get completion: %w", submitErr)
	}

	t.sendMessageAndHandleErr(chatID, answerText)
	return nil
}

func (t *TelegramUsecase) handleDocument(chatID int64, sessionID uuid.UUID, document *api.Document) error {
	fileURL, err := t.Bot.GetFileDirectURL(document.FileID)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, MessageServerError.Text(t.lang))
		return fmt.Errorf("failed to get file URL: %w", err)
	}

	data, err := downloadFile(fileURL)
	if err != nil {
		t.sendMessageAndHandleErr(chatID, MessageServerError.Text(t.lang))
		return fmt.Errorf("failed to download file: %w", err)
	}

	doc, err := t.Grounded.LoadDocument(sessionID, document.FileName, document.MimeType, data)
	switch {
	case errors.Is(err, grounding.ErrUnsupportedType):
		t.sendMessageAndHandleErr(chatID, MessageUnsupportedFile.Text(t.lang))
		return nil
	case errors.Is(err, grounding.ErrDecode):
		t.sendMessageAndHandleErr(chatID, MessageBrokenFile.Text(t.lang))
		return nil
	case err != nil:
		t.sendMessageAndHandleErr(chatID, MessageServerError.Text(t.lang))
		return fmt.Errorf("failed to load document: %w", err)
	}

	t.sendMessageAndHandleErr(chatID, MessageDocumentLoadedFormat.Format(t.lang, doc.Name))
	return nil
}

// session returns the chat's session, creating one on first contact. The
// update loop is single-goroutine so the map needs no lock.
func (t *TelegramUsecase) session(chatID int64) uuid.UUID {
	if sessionID, ok := t.sessions[chatID]; ok {
		return sessionID
	}
	sessionID := t.Chat.NewSession()
	t.sessions[chatID] = sessionID
	return sessionID
}

func (t *TelegramUsecase) sendMessage(chatID int64, text string) (api.Message, error) {
	return t.Bot.Send(api.NewMessage(chatID, text))
}

func (t *TelegramUsecase) sendMessageAndHandleErr(chatID int64, text string) {
	if _, err := t.sendMessage(chatID, text); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func downloadFile(fileURL string) ([]byte, error) {
	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
