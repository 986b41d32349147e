package main

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/model"
	"Go2FlowTag/internal/report"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// ft-watch prints every report published by the NATS writer.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var natsCfg *config.NATSConfig
	for i := range cfg.Writers {
		if cfg.Writers[i].Enabled && cfg.Writers[i].Type == "nats" {
			natsCfg = &cfg.Writers[i].NATS
			break
		}
	}
	if natsCfg == nil {
		log.Fatalf("No enabled NATS writer found in config. Nothing to watch.")
	}

	sub, err := report.NewSubscriber(*natsCfg)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.Start(func(r *model.Report) {
		log.Printf("Received report for run %s (%s, generated %s)", r.RunID, r.Format, r.GeneratedAt.Format("2006-01-02 15:04:05"))
		if err := report.Render(os.Stdout, r); err != nil {
			log.Printf("Error rendering report %s: %v", r.RunID, err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Watcher shutting down...")
}
