package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cotabot/core/logger"
	"github.com/m3rciful/cotabot/core/telegram/keyboard"
	"github.com/m3rciful/cotabot/core/telegram/sender"
	"github.com/m3rciful/cotabot/cota"
)

// Telegram rejects edits and deletes of sufficiently old messages with
// these API descriptions.
var staleDescriptions = []string{
	"message to edit not found",
	"message to delete not found",
	"message can't be deleted",
	"message can't be edited",
	"message identifier is not specified",
}

const defaultNoticeTTL = 8 * time.Second

// TelegramTransport adapts the Telegram Bot API to the cota.Transport
// contract: synchronous send/edit/delete for view renders, asynchronous
// fire-and-forget notices through the outbound dispatcher.
type TelegramTransport struct {
	bot       *tele.Bot
	disp      *sender.Dispatcher
	noticeTTL time.Duration
}

// NewTelegramTransport wires the live bot and dispatcher. ttl bounds how
// long transient notices stay in chat; zero picks the default.
func NewTelegramTransport(bot *tele.Bot, disp *sender.Dispatcher, ttl time.Duration) *TelegramTransport {
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &TelegramTransport{bot: bot, disp: disp, noticeTTL: ttl}
}

// editable addresses a message by chat and message id, which is all the
// session state retains across restarts.
type editable struct {
	chatID    int64
	messageID int
}

func (e editable) MessageSig() (string, int64) {
	return strconv.Itoa(e.messageID), e.chatID
}

func toMarkup(grid [][]cota.Button) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(grid))
	for _, row := range grid {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			verb, payload := splitToken(b.Token)
			r = append(r, keyboard.InlineBtn{Text: b.Text, Unique: verb, Data: payload})
		}
		rows = append(rows, r)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// splitToken separates a button token into the callback verb and its
// optional argument.
func splitToken(token string) (string, string) {
	parts := strings.SplitN(token, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func mapTeleError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "message is not modified") {
		// Rendering identical content is fine.
		return nil
	}
	for _, desc := range staleDescriptions {
		if strings.Contains(msg, desc) {
			return cota.ErrStaleMessage
		}
	}
	return err
}

// Send posts a new view message and returns its handle.
func (t *TelegramTransport) Send(chatID int64, text string, grid [][]cota.Button) (cota.MessageRef, error) {
	msg, err := t.bot.Send(tele.ChatID(chatID), text,
		&tele.SendOptions{ParseMode: tele.ModeMarkdown},
		toMarkup(grid),
	)
	if err != nil {
		return cota.MessageRef{}, mapTeleError(err)
	}
	return cota.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// Edit rewrites an existing view message in place.
func (t *TelegramTransport) Edit(ref cota.MessageRef, text string, grid [][]cota.Button) error {
	_, err := t.bot.Edit(editable{chatID: ref.ChatID, messageID: ref.MessageID}, text,
		&tele.SendOptions{ParseMode: tele.ModeMarkdown},
		toMarkup(grid),
	)
	return mapTeleError(err)
}

// Delete removes a view message.
func (t *TelegramTransport) Delete(ref cota.MessageRef) error {
	err := t.bot.Delete(editable{chatID: ref.ChatID, messageID: ref.MessageID})
	return mapTeleError(err)
}

// Notice sends a transient message that deletes itself after the TTL. It
// never blocks the caller: the send goes through the dispatcher queue and
// the delayed delete runs on a timer. Failures are swallowed.
func (t *TelegramTransport) Notice(chatID int64, text string) {
	run := func() error {
		msg, err := t.bot.Send(tele.ChatID(chatID), text)
		if err != nil {
			return err
		}
		time.AfterFunc(t.noticeTTL, func() {
			if err := t.bot.Delete(editable{chatID: chatID, messageID: msg.ID}); err != nil {
				logger.TG.LogAttrs(context.Background(), slog.LevelDebug, "notice.delete_failed",
					slog.Int64("chat_id", chatID),
					slog.String("err", err.Error()),
				)
			}
		})
		return nil
	}

	if t.disp != nil {
		if err := t.disp.Enqueue(context.Background(), "notice", "sendMessage", run); err == nil {
			return
		}
	}
	// Queue saturated or absent; still deliver without blocking.
	go func() {
		if err := run(); err != nil {
			logger.TG.LogAttrs(context.Background(), slog.LevelDebug, "notice.send_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
		}
	}()
}
