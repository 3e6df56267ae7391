package router

import (
	"github.com/m3rciful/cotabot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry is the minimal command/callback lookup surface the routers need.
type Registry interface {
	Commands() map[string]commands.Command
	LookupCommand(name string) (string, commands.Command, bool)
	GetCallback(key string) (tele.HandlerFunc, bool)
	CallbackNotFound() tele.HandlerFunc
	TextFallback() tele.HandlerFunc
}

// TextConsumer gets first pick of plain text updates. Consume reports whether
// the update was handled; unconsumed text falls through to command lookup.
type TextConsumer interface {
	Consume(c tele.Context) (bool, error)
}

// Route pairs a Telebot endpoint with its prepared handler.
type Route struct {
	Endpoint interface{}
	Handler  tele.HandlerFunc
}
