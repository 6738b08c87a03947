//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/config"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Value(logging.Name(config.AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		provideConfig,
		provideSession,
		newDiscordPlatform,
		wire.Bind(new(ticketing.Platform), new(*discordPlatform)),
		provideStore,
		provideMongo,
		provideHistoryDal,
		provideService,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil
}
