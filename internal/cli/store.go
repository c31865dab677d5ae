package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	cryptoconditions "github.com/LeJamon/go-cryptoconditions"
	"github.com/LeJamon/go-cryptoconditions/internal/config"
	"github.com/LeJamon/go-cryptoconditions/internal/storage/condstore"
	bboltstore "github.com/LeJamon/go-cryptoconditions/internal/storage/condstore/bbolt"
	pebblestore "github.com/LeJamon/go-cryptoconditions/internal/storage/condstore/pebble"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local store of named conditions and fulfillments",
}

var storePutCmd = &cobra.Command{
	Use:   "put <name> <uri>",
	Short: "Store a condition or fulfillment URI under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, uri := args[0], args[1]
		rec, err := recordFromURI(name, uri)
		if err != nil {
			return err
		}
		return withStore(func(ctx context.Context, mgr *condstore.Manager) error {
			return mgr.Put(ctx, rec)
		})
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, mgr *condstore.Manager) error {
			rec, err := mgr.Get(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("name: %s\nkind: %s\nuri:  %s\n", rec.Name, rec.Kind, rec.URI)
			return nil
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored record names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, mgr *condstore.Manager) error {
			names, err := mgr.List(ctx)
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		})
	},
}

var storeRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, mgr *condstore.Manager) error {
			return mgr.Delete(ctx, args[0])
		})
	},
}

// recordFromURI builds a validated store record from a cc: or cf: URI.
func recordFromURI(name, uri string) (*condstore.Record, error) {
	switch {
	case strings.HasPrefix(uri, "cc:"):
		cond, err := cryptoconditions.ParseConditionURI(uri)
		if err != nil {
			return nil, err
		}
		return &condstore.Record{
			Name:   name,
			Kind:   condstore.KindCondition,
			URI:    cond.URI(),
			Binary: cond.Binary(),
		}, nil
	case strings.HasPrefix(uri, "cf:"):
		f, err := cryptoconditions.ParseFulfillmentURI(uri)
		if err != nil {
			return nil, err
		}
		binary, err := cryptoconditions.FulfillmentBinary(f)
		if err != nil {
			return nil, err
		}
		normalized, err := cryptoconditions.FulfillmentURI(f)
		if err != nil {
			return nil, err
		}
		return &condstore.Record{
			Name:   name,
			Kind:   condstore.KindFulfillment,
			URI:    normalized,
			Binary: binary,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized URI prefix", cryptoconditions.ErrMalformedEncoding)
	}
}

// withStore opens the configured backend, runs fn and closes the store.
func withStore(fn func(context.Context, *condstore.Manager) error) error {
	var db condstore.DB
	var err error
	switch cfg.Store.Backend {
	case config.BackendPebble:
		db, err = pebblestore.Open(cfg.Store.Path)
	default:
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
		db, err = bboltstore.Open(cfg.Store.Path)
	}
	if err != nil {
		return err
	}
	mgr, err := condstore.NewManager(db, condstore.Options{
		CacheSize:            cfg.Store.CacheSize,
		CompressionThreshold: cfg.Store.CompressionThreshold,
	})
	if err != nil {
		db.Close()
		return err
	}
	defer mgr.Close()
	return fn(context.Background(), mgr)
}

func init() {
	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeRmCmd)
	rootCmd.AddCommand(storeCmd)
}
