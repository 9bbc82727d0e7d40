package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/price-engine/internal/common"
	"github.com/hxuan190/price-engine/internal/config"
	"github.com/hxuan190/price-engine/internal/engine"
	"github.com/hxuan190/price-engine/internal/http"
)

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.ChainConfig{},
		&config.AggregatorConfig{},
	)

	general := &config.GeneralConfig{}
	if err := general.Load(); err == nil {
		common.ConfigureLogLevel(general.LogLevel)
	}

	// di container
	dic, err := container.New(
		conf,

		&engine.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
