package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scheduler-assistant/internal/model"
	"scheduler-assistant/internal/service"
)

const (
	cbMarkPrefix = "mark:"
	// dates offered per event in the /pending keyboard
	maxButtonDates = 3
)

// status codes keep callback data under Telegram's 64 byte limit
var statusCodes = map[string]model.SessionStatus{
	"a": model.SessionAttended,
	"m": model.SessionMissed,
	"s": model.SessionSkipped,
}

// ErrNoChat is returned when a push is requested without TELEGRAM_CHAT_ID.
var ErrNoChat = errors.New("telegram chat id is not configured")

// Digest builds the texts the bot sends.
type Digest interface {
	DailySummary(ctx context.Context, now time.Time) (string, error)
	PendingOverview(ctx context.Context, now time.Time) ([]service.PendingEvent, error)
}

// SessionMarker records attendance chosen from inline buttons.
type SessionMarker interface {
	Mark(ctx context.Context, eventID string, input service.SessionInput) (*model.SessionAttendance, error)
}

// Bot answers commands and pushes the daily digest into one chat.
type Bot struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	digest   Digest
	sessions SessionMarker
	log      *zap.Logger
	now      func() time.Time
}

func New(token string, chatID int64, digest Digest, sessions SessionMarker, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return NewWithAPI(api, chatID, digest, sessions, log), nil
}

// NewWithAPI wraps an already authorized client.
func NewWithAPI(api *tgbotapi.BotAPI, chatID int64, digest Digest, sessions SessionMarker, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return &Bot{
		api:      api,
		chatID:   chatID,
		digest:   digest,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Warn("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if !b.allowed(update.Message.Chat) {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Warn("handle message", zap.Error(err))
			}
		}
	}

	return ctx.Err()
}

// allowed accepts the configured chat, or any private chat when none is set.
func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	if chat == nil {
		return false
	}
	if b.chatID != 0 {
		return chat.ID == b.chatID
	}
	return chat.IsPrivate()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	b.log.Info("command", zap.Int64("chat_id", msg.Chat.ID), zap.String("command", msg.Command()))
	switch msg.Command() {
	case "start", "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "report":
		return b.handleReport(ctx, msg.Chat.ID)
	case "pending":
		return b.handlePending(ctx, msg.Chat.ID)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Scheduler Assistant</b>\n" +
	"• /report — today's agenda and sessions to mark\n" +
	"• /pending — mark finished daily sessions\n" +
	"• /help — this message"

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	text, err := b.digest.DailySummary(ctx, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the report: %s", html.EscapeString(err.Error())))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handlePending(ctx context.Context, chatID int64) error {
	overview, err := b.digest.PendingOverview(ctx, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load sessions: %s", html.EscapeString(err.Error())))
	}
	if len(overview) == 0 {
		return b.sendText(chatID, "✅ No sessions waiting to be marked.")
	}

	for _, p := range overview {
		msg := tgbotapi.NewMessage(chatID, pendingText(p))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = pendingKeyboard(p)
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || !b.allowed(cb.Message.Chat) {
		return nil
	}

	eventID, date, status, err := parseMarkCallback(cb.Data)
	if err != nil {
		b.answer(cb.ID, "")
		return nil
	}

	session, err := b.sessions.Mark(ctx, eventID, service.SessionInput{SessionDate: date, Status: status})
	if err != nil {
		b.answer(cb.ID, "Could not save")
		return err
	}

	b.answer(cb.ID, fmt.Sprintf("%s marked %s", session.SessionDate, session.Status))
	return nil
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

// SendDailyDigest pushes the daily summary into the configured chat.
func (b *Bot) SendDailyDigest(ctx context.Context) error {
	if b.chatID == 0 {
		return ErrNoChat
	}
	text, err := b.digest.DailySummary(ctx, b.now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if err := b.sendText(b.chatID, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func pendingText(p service.PendingEvent) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("♻️ <b>%s</b>\n", html.EscapeString(strings.TrimSpace(p.Event.Title))))
	if p.Event.HasDailyWindow() {
		sb.WriteString(fmt.Sprintf("⏰ %s–%s daily\n", *p.Event.DailyStartTime, *p.Event.DailyEndTime))
	}
	sb.WriteString(fmt.Sprintf("📆 %d unmarked: %s", len(p.Dates), strings.Join(p.Dates, ", ")))
	return sb.String()
}

// pendingKeyboard offers one row per date, oldest dates first.
func pendingKeyboard(p service.PendingEvent) tgbotapi.InlineKeyboardMarkup {
	dates := p.Dates
	if len(dates) > maxButtonDates {
		dates = dates[:maxButtonDates]
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dates))
	for _, d := range dates {
		label := d[5:]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+label, markCallback(p.Event.ID, d, "a")),
			tgbotapi.NewInlineKeyboardButtonData("❌ "+label, markCallback(p.Event.ID, d, "m")),
			tgbotapi.NewInlineKeyboardButtonData("⏭ "+label, markCallback(p.Event.ID, d, "s")),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func markCallback(eventID, date, code string) string {
	return cbMarkPrefix + eventID + ":" + date + ":" + code
}

func parseMarkCallback(data string) (eventID, date string, status model.SessionStatus, err error) {
	rest, ok := strings.CutPrefix(data, cbMarkPrefix)
	if !ok {
		return "", "", "", fmt.Errorf("unknown callback %q", data)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", "", "", fmt.Errorf("malformed callback %q", data)
	}
	status, ok = statusCodes[parts[2]]
	if !ok {
		return "", "", "", fmt.Errorf("unknown status code in %q", data)
	}
	return parts[0], parts[1], status, nil
}
