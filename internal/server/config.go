package server

import (
	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address. Empty means AppConfig.ListenAddr.
	ListenAddr string

	// AppConfig builds the service when Service is nil.
	AppConfig *app.Config

	// Service lets callers share an already-built service. The server takes
	// ownership and closes it on Close.
	Service *app.Service

	Logger logging.Logger
}
