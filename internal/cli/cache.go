package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/internal/config"
	"github.com/matzehuels/loomviz/pkg/cache"
	errs "github.com/matzehuels/loomviz/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the feed and SVG cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached feeds and SVGs",
		Long: `Clear empties a directory cache. Redis and MongoDB entries expire on
their own after the configured TTL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := c.cacheSpec()
			if err != nil {
				return err
			}
			cc, err := cache.Open(cmd.Context(), spec)
			if err != nil {
				return err
			}
			defer cc.Close()

			switch fc := cc.(type) {
			case cache.NullCache:
				printInfo(c.out, "Caching is disabled")
				return nil
			case *cache.FileCache:
				if err := fc.Clear(); err != nil {
					return err
				}
				printSuccess(c.out, "Cache cleared")
				printDetail(c.out, "Directory: %s", fc.Dir())
				return nil
			default:
				return errs.New(errs.ErrCodeInvalidInput, "cache clear only supports directory caches, got %s", spec)
			}
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := c.cacheSpec()
			if err != nil {
				return err
			}
			printKeyValue(c.out, "Cache", spec)
			return nil
		},
	}
}

// cacheSpec resolves the configured cache, defaulting to the user cache dir.
func (c *CLI) cacheSpec() (string, error) {
	if c.cfg.Cache.URL != "" {
		return c.cfg.Cache.URL, nil
	}
	return config.CacheDir()
}
