package main

import (
	"log"

	"github.com/m3rciful/cotabot/bot"
	"github.com/m3rciful/cotabot/core/cmd"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return bot.Bootstrap(carrier.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
