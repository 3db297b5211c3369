//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/comfortlab/roomsense/internal/bootstrap"
	"github.com/comfortlab/roomsense/internal/infra/config"
	httpiface "github.com/comfortlab/roomsense/internal/interface/http"
	"github.com/comfortlab/roomsense/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideStoreOptions,
		provideLiveSource,
		provideHistorySource,
		provideStore,
		provideLabelRepository,
		provideLabelQueue,
		provideLabelArchive,
		provideLabelService,
		provideHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
