package cli

import (
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openupm/openupm-cli/pkg/cache"
	"github.com/openupm/openupm-cli/pkg/config"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/integrations/npm"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the packument cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached packuments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			switch cfg.Cache.Backend {
			case config.CacheNone:
				printInfo("Cache is disabled")
				return nil
			case config.CacheRedis:
				rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(ctx, npm.CacheKeyPrefix+"*")
				if err != nil {
					return errs.Wrap(errs.ErrCodeNetwork, err, "clear redis cache")
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Redis: %s", cfg.Cache.RedisURL)
				return nil
			}

			dir, err := config.CacheDir()
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "get cache dir")
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "open cache dir")
			}
			count := countFiles(fc.Dir())
			if err := fc.Clear(); err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "clear %s", fc.Dir())
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// countFiles counts regular files under dir, ignoring unreadable entries.
func countFiles(dir string) int {
	n := 0
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where packuments are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheNone:
				printKeyValue("backend", string(config.CacheNone))
			case config.CacheRedis:
				printKeyValue("backend", string(config.CacheRedis))
				printKeyValue("url", cfg.Cache.RedisURL)
			default:
				dir, err := config.CacheDir()
				if err != nil {
					return errs.Wrap(errs.ErrCodeInternal, err, "get cache dir")
				}
				printKeyValue("backend", string(config.CacheFile))
				printKeyValue("directory", dir)
			}
			return nil
		},
	}
}
