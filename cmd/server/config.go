package main

import (
	"github.com/dmitrymomot/moviestream/internal/logger"
	"github.com/dmitrymomot/moviestream/internal/server"
	"github.com/dmitrymomot/moviestream/internal/storage/mongodb"
)

// config aggregates every component's settings; all of it comes from the
// environment (with .env support for local development).
type config struct {
	AppName string `env:"APP_NAME" envDefault:"moviestream"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// StreamBuffer is the per-subscriber buffer for live stream events;
	// history replay is unaffected by it.
	StreamBuffer int `env:"STREAM_BUFFER_SIZE" envDefault:"64"`

	Log    logger.Config
	Server server.Config
	Mongo  mongodb.Config
}
