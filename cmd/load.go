package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"melodex/cache"
	"melodex/config"
	"melodex/core/catalog"
	"melodex/db"
	"melodex/logger"
	"melodex/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	loadWatch       bool
	loadFromMinio   bool
	loadMinioPrefix string
)

var loadCmd = &cobra.Command{
	Use:   "load [batch files...]",
	Short: "Ingest catalog batch files",
	Long: `Ingest batch JSON documents into the catalog. Sections apply in
singles, albums, users, ratings order. With --watch the batch drop
directory is watched and new .json files are ingested as they appear;
with --from-minio batch objects are fetched from the configured bucket.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadWatch, "watch", false, "watch the batch drop directory for new files")
	loadCmd.Flags().BoolVar(&loadFromMinio, "from-minio", false, "fetch batch objects from the configured MinIO bucket")
	loadCmd.Flags().StringVar(&loadMinioPrefix, "prefix", "", "object key prefix when loading from MinIO")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	if err := db.ConnectDB(cfg); err != nil {
		return err
	}
	defer db.CloseDB()

	if err := db.ConnectGormDB(cfg); err != nil {
		return err
	}
	defer db.CloseGormDB()

	if err := db.InitSchema(); err != nil {
		return err
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, analytics cache will go stale only by TTL", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
	}

	loader := catalog.NewLoader(db.DB)

	if loadFromMinio {
		return loadFromObjectStore(ctx, cfg, loader)
	}

	for _, path := range args {
		if err := applyBatchPath(ctx, loader, path); err != nil {
			return err
		}
	}

	if loadWatch {
		return watchDropDir(ctx, cfg, loader)
	}
	if len(args) == 0 {
		return fmt.Errorf("no batch files given (and --watch not set)")
	}
	return nil
}

func applyBatchPath(ctx context.Context, loader *catalog.Loader, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open batch file %q: %w", path, err)
	}
	defer f.Close()

	var bf catalog.BatchFile
	if err := json.NewDecoder(f).Decode(&bf); err != nil {
		return fmt.Errorf("failed to decode batch file %q: %w", path, err)
	}

	report := loader.ApplyBatchFile(ctx, bf)
	invalidateAfterLoad(ctx, report)
	return printReport(path, report)
}

func loadFromObjectStore(ctx context.Context, cfg *config.Config, loader *catalog.Loader) error {
	if err := storage.InitMinio(cfg); err != nil {
		return err
	}

	keys, err := storage.ListBatchObjects(ctx, cfg, loadMinioPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		logger.Info("no batch objects found", logger.String("prefix", loadMinioPrefix))
		return nil
	}

	for _, key := range keys {
		bf, err := storage.FetchBatchObject(ctx, cfg, key)
		if err != nil {
			return err
		}
		report := loader.ApplyBatchFile(ctx, *bf)
		invalidateAfterLoad(ctx, report)
		if err := printReport(key, report); err != nil {
			return err
		}
	}
	return nil
}

// watchDropDir ingests .json files dropped into the batch directory until
// the process is interrupted.
func watchDropDir(ctx context.Context, cfg *config.Config, loader *catalog.Loader) error {
	if err := os.MkdirAll(cfg.BatchDropDir, 0755); err != nil {
		return fmt.Errorf("failed to create batch drop directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.BatchDropDir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", cfg.BatchDropDir, err)
	}
	logger.Info("watching batch drop directory", logger.String("dir", cfg.BatchDropDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Writers should move files in atomically; rename shows up as Create.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if err := applyBatchPath(ctx, loader, event.Name); err != nil {
				logger.Error("failed to apply dropped batch file",
					logger.String("file", filepath.Base(event.Name)),
					logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", logger.ErrorField(err))
		}
	}
}

func invalidateAfterLoad(ctx context.Context, report *catalog.BatchReport) {
	loaded := 0
	for _, s := range report.Sections {
		loaded += s.Loaded
	}
	if loaded == 0 {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate analytics cache", logger.ErrorField(err))
	}
}

func printReport(source string, report *catalog.BatchReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Printf("%s:\n%s\n", source, out)
	return nil
}
