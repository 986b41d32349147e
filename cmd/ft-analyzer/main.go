package main

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/engine/manager"
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file")
	flowLogPath := flag.String("flow-log", "", "Flow log file (overrides pipeline.flow_log_path)")
	lookupPath := flag.String("lookup", "", "Lookup table file (overrides pipeline.lookup_path)")
	outputPath := flag.String("output", "", "Text report file (overrides the text writer output_path)")
	format := flag.String("format", "", "Flow log format (overrides pipeline.format)")
	interactive := flag.Bool("interactive", false, "Prompt for the input and output paths")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Warning: config file '%s' not found, using defaults.", *configPath)
		cfg = config.Default()
	}
	log.Println("Configuration loaded successfully.")

	// 2. Apply overrides
	if *format != "" {
		cfg.Pipeline.Format = *format
	}
	paths := runPaths{
		FlowLog: firstNonEmpty(*flowLogPath, cfg.Pipeline.FlowLogPath),
		Lookup:  firstNonEmpty(*lookupPath, cfg.Pipeline.LookupPath),
		Output:  firstNonEmpty(*outputPath, textOutputPath(cfg)),
	}
	if *interactive {
		paths, err = choosePaths(os.Stdin, os.Stdout, paths)
		if err != nil {
			log.Fatalf("Failed to read paths: %v", err)
		}
	}
	if paths.FlowLog == "" || paths.Lookup == "" {
		log.Fatal("Both a flow log and a lookup table are required (use -flow-log and -lookup).")
	}
	setTextOutputPath(cfg, paths.Output)

	// 3. Initialize the pipeline
	managerImpl, err := manager.NewManager(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer managerImpl.Close()
	log.Println("Manager initialized.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Run
	log.Printf("Analyzing '%s' with lookup table '%s'...", paths.FlowLog, paths.Lookup)
	r, err := managerImpl.Run(ctx, paths.FlowLog, paths.Lookup)
	if err != nil {
		managerImpl.Close()
		log.Fatalf("Analysis failed: %v", err)
	}
	log.Printf("Run %s complete: %d tags, %d port/protocol combinations, %d of %d lines skipped.",
		r.RunID, len(r.TagCounts), len(r.PortProtocolCounts), r.SkippedLines, r.TotalLines)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// textOutputPath returns the output path of the first enabled text writer.
func textOutputPath(cfg *config.Config) string {
	for _, w := range cfg.Writers {
		if w.Enabled && w.Type == "text" {
			return w.Text.OutputPath
		}
	}
	return ""
}

// setTextOutputPath points every enabled text writer at path, adding one if
// the config has none.
func setTextOutputPath(cfg *config.Config, path string) {
	if path == "" {
		return
	}
	found := false
	for i := range cfg.Writers {
		if cfg.Writers[i].Enabled && cfg.Writers[i].Type == "text" {
			cfg.Writers[i].Text.OutputPath = path
			found = true
		}
	}
	if !found {
		cfg.Writers = append(cfg.Writers, config.WriterDef{
			Type:    "text",
			Enabled: true,
			Text:    config.TextConfig{OutputPath: path},
		})
	}
}
