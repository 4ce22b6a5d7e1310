// Poll Agent
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/pollard/poll-agent/pkg/core"
	"github.com/pollard/poll-agent/pkg/monitors/builtins"

	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	// Version of the agent
	Version string
	// BuiltTime of the agent
	BuiltTime string
)

func init() {
	log.SetFormatter(&prefixed.TextFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	configPath := flag.String("config", "/etc/poll-agent/agent.yaml", "agent config path")
	version := flag.Bool("version", false, "print agent version")
	debug := flag.Bool("debug", false, "print debugging output")

	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *version {
		fmt.Printf("agent-version: %s, built-time: %s\n", Version, BuiltTime)
		os.Exit(0)
	}

	agent, err := core.Startup(builtins.NewRegistry(), *configPath)
	if err != nil {
		log.WithError(err).Error("Could not start agent")
		os.Exit(1)
	}

	exit := make(chan struct{})

	interruptCh := make(chan os.Signal, 1)
	signal.Notify(interruptCh, os.Interrupt)
	go func() {
		<-interruptCh
		log.Info("Interrupt signal received, stopping agent")
		agent.Shutdown()
		close(exit)
	}()

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	go func() {
		for range hupCh {
			log.Info("Reloading agent config")
			if err := agent.LoadAndConfigure(*configPath); err != nil {
				log.WithError(err).Error("Could not reload config, keeping current one")
			}
		}
	}()

	<-exit
}
