package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/sonlib/kvstore"
)

func newKVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Read and write records of the configured store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a record",
			Args:  cobra.ExactArgs(1),
			RunE: a.withStore(func(cmd *cobra.Command, s kvstore.Store, args []string) error {
				key, err := parseKey(args[0])
				if err != nil {
					return err
				}
				v, err := s.Get(a.ctx, key)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(v, '\n'))

				return err
			}),
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Write a record",
			Args:  cobra.ExactArgs(2),
			RunE: a.withStore(func(_ *cobra.Command, s kvstore.Store, args []string) error {
				key, err := parseKey(args[0])
				if err != nil {
					return err
				}

				return s.Set(a.ctx, key, []byte(args[1]))
			}),
		},
		&cobra.Command{
			Use:   "remove KEY",
			Short: "Delete a record",
			Args:  cobra.ExactArgs(1),
			RunE: a.withStore(func(_ *cobra.Command, s kvstore.Store, args []string) error {
				key, err := parseKey(args[0])
				if err != nil {
					return err
				}

				return s.Remove(a.ctx, key)
			}),
		},
		&cobra.Command{
			Use:   "incr KEY DELTA",
			Short: "Add DELTA to an 8-byte integer record and print the result",
			Args:  cobra.ExactArgs(2),
			RunE: a.withStore(func(cmd *cobra.Command, s kvstore.Store, args []string) error {
				key, err := parseKey(args[0])
				if err != nil {
					return err
				}
				delta, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("delta %q: %w", args[1], err)
				}
				n, err := s.IncrementInt(a.ctx, key, delta)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)

				return nil
			}),
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of records",
			Args:  cobra.NoArgs,
			RunE: a.withStore(func(cmd *cobra.Command, s kvstore.Store, _ []string) error {
				n, err := s.Count(a.ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)

				return nil
			}),
		},
	)

	return cmd
}

// withStore opens the configured store around fn.
func (a *app) withStore(fn func(*cobra.Command, kvstore.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := kvstore.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.log.WithField("kind", cfg.Kind).Debug("opening store")
		s, err := kvstore.Open(a.ctx, *cfg, kvstore.WithLogger(a.log))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}()

		return fn(cmd, s, args)
	}
}

func parseKey(s string) (int64, error) {
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", s, err)
	}

	return key, nil
}
