package router

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for plain text messages. A consumer (such as
// an in-flight creation wizard) gets the message first; unconsumed text goes
// through command lookup, then the registry fallback.
func TextRoute(consumer TextConsumer, reg Registry, opts TextOptions) Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if consumer != nil {
			consumed, err := consumer.Consume(c)
			if consumed || err != nil {
				logHandlerSummary(c, "session_text", start, "", "", err)
				return err
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return Route{
		Endpoint: tele.OnText,
		Handler:  handler,
	}
}
