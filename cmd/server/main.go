package main

import (
	"github.com/meetingnexus/backend/internal/server"
	"github.com/meetingnexus/backend/internal/util"
	"github.com/meetingnexus/backend/pkg/logger"
	"github.com/meetingnexus/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
