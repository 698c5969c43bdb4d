package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitelint/sitelint/internal/model"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scan every content item under the content root",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		ids, err := env.Source.ListIDs(ctx)
		if err != nil {
			return eris.Wrap(err, "list content ids")
		}

		scan := func(ctx context.Context, contentID string) (*model.ScanResult, error) {
			return env.Engine.Scan(ctx, contentID)
		}
		if err := processBatch(ctx, ids, batchLimit, cfg.Batch.MaxConcurrentScans, scan); err != nil {
			return err
		}
		env.Stats.Invalidate()
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of content items to scan (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// scanFunc is the callback signature for scanning one content item.
type scanFunc func(ctx context.Context, contentID string) (*model.ScanResult, error)

// processBatch applies limit, then scans content ids concurrently. An
// individual failed scan is logged and counted; it never aborts the batch.
func processBatch(ctx context.Context, ids []string, limit, concurrency int, scan scanFunc) error {
	if len(ids) == 0 {
		zap.L().Info("no content found")
		return nil
	}

	// Apply limit
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	zap.L().Info("scanning batch",
		zap.Int("items", len(ids)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, id := range ids {
		g.Go(func() error {
			log := zap.L().With(zap.String("content_id", id))

			result, err := scan(gctx, id)
			if err != nil {
				failed.Add(1)
				log.Error("scan failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("scan complete", zap.Int("violations", len(result.Violations)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch scan")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
