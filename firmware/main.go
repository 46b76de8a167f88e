package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/config"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/sweep"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/transport"
)

func main() {
	configPath := flag.String("config", "cv.yaml", "path to YAML configuration")
	listPorts := flag.Bool("list-ports", false, "list serial ports and exit")
	flag.Parse()

	if *listPorts {
		ports, err := transport.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			log.Println(p)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tr, err := transport.OpenSerial(cfg.Serial.Port)
	if err != nil {
		log.Fatalf("Failed to open serial port: %v", err)
	}
	defer tr.Close()

	fe := frontend.NewSim(&cfg.Sim)
	dispatcher := sweep.NewDispatcher(tr, fe, sweep.ParamsFromConfig(cfg.Sweep))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Listening on %s", cfg.Serial.Port)
	dispatcher.Run(ctx)
	log.Println("Shut down, output parked at rest")
}
