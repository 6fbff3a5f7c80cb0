package main

import (
	"fmt"
	"log"

	"github.com/007king700/FOSS-Deck/config"
	"github.com/007king700/FOSS-Deck/storage"
	"github.com/007king700/FOSS-Deck/ui"
)

func main() {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		log.Fatalf("startup failed while loading config: %v", err)
	}

	fmt.Printf("Device ID:      %s\n", cfg.DeviceID)
	fmt.Printf("Device Name:    %s\n", cfg.DeviceName)
	fmt.Printf("Config File:    %s\n", cfgPath)

	dataDir, err := config.ResolveDataDir()
	if err != nil {
		log.Fatalf("startup failed while resolving data dir: %v", err)
	}

	store, dbPath, err := storage.Open(dataDir)
	if err != nil {
		log.Fatalf("startup failed while opening database: %v", err)
	}
	fmt.Printf("Database File:  %s\n", dbPath)

	// The UI owns the store from here and closes it on shutdown.
	if err := ui.Run(ui.RunOptions{Config: cfg, ConfigPath: cfgPath, Store: store}); err != nil {
		_ = store.Close()
		log.Fatalf("ui failed: %v", err)
	}
}
