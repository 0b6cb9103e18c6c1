//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/cory-johannsen/knight/internal/config"
	"github.com/cory-johannsen/knight/internal/game/dice"
)

func initializeApp(cfg config.Config, src dice.Source) (*App, func(), error) {
	wire.Build(appSet)
	return nil, nil, nil
}
