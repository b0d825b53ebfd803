package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pavodb/pavodb/internal"
	"github.com/pavodb/pavodb/internal/bufferpool"
	"github.com/pavodb/pavodb/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	dataDir := flag.String("data-dir", "", "Working directory for database files (overrides config)")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := internal.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, storage.FileMode0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("pavodb: %v", err)
	}
}

func defaultConfig() *internal.PavoConfig {
	cfg := &internal.PavoConfig{AppName: "pavodb"}
	cfg.Storage.DataDir = "./data"
	cfg.Storage.PageSize = storage.DefaultPageSize
	cfg.Pool.Capacity = 128
	return cfg
}

// run exercises the buffer pool against a demo page file and dumps the
// frame table, so the pool's behavior can be inspected from the shell.
func run(cfg *internal.PavoConfig) error {
	path := filepath.Join(cfg.Storage.DataDir, "demo.pavo")
	f, err := storage.OpenDiskFile(path, cfg.Storage.PageSize)
	if err != nil {
		return err
	}
	defer f.Close()

	pool := bufferpool.New(cfg.Pool.Capacity, cfg.Storage.PageSize)
	defer pool.Close()

	slog.Info("pool ready",
		"file", path,
		"capacity", pool.Capacity(),
		"page_size", pool.PageSize())

	for i := 0; i < 4; i++ {
		no, page, err := pool.AllocateNew(f)
		if err != nil {
			return err
		}
		copy(page.Data(), fmt.Sprintf("demo page %d", no))
		if err := pool.Unpin(f, no, true); err != nil {
			return err
		}
	}

	if err := pool.FlushFile(f); err != nil {
		return err
	}

	if cfg.Pool.Debug {
		pool.Dump(os.Stdout)
	}

	st := pool.Stats()
	slog.Info("workload done",
		"hits", st.Hits,
		"misses", st.Misses,
		"evictions", st.Evictions,
		"writebacks", st.Writebacks,
		"flushes", st.Flushes)
	return nil
}
