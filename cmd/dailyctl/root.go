package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/five82/daily/internal/client"
	"github.com/five82/daily/internal/monitor"
	"github.com/five82/daily/internal/prefs"
	"github.com/five82/daily/internal/ui"
)

type rootOptions struct {
	daemon    string
	prefsPath string
	poll      time.Duration
	fs        afero.Fs
}

func (o *rootOptions) prefs() prefs.Prefs {
	return prefs.Load(o.fs, o.prefsPath)
}

// client resolves the daemon address: flag, then prefs, then the default.
func (o *rootOptions) client() (*client.Client, error) {
	addr := strings.TrimSpace(o.daemon)
	if addr == "" {
		addr = o.prefs().Daemon
	}
	return client.NewClient(addr)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{fs: afero.NewOsFs()}

	statusCmd := newStatusCmd(opts)
	root := &cobra.Command{
		Use:           "dailyctl",
		Short:         "Inspect and steer a running daily wallpaper daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          statusCmd.RunE,
	}
	root.PersistentFlags().StringVar(&opts.daemon, "daemon", "", "daemon address (default from prefs, else "+client.DefaultAddress+")")
	root.PersistentFlags().StringVar(&opts.prefsPath, "prefs", prefs.DefaultPath(), "preferences file")
	root.PersistentFlags().DurationVar(&opts.poll, "poll", 2*time.Second, "status poll interval")

	root.AddCommand(statusCmd, newOverrideCmd(opts), newShowCmd(opts))
	return root
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Open the live status console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			log.SetOutput(io.Discard)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store := &monitor.Store{}
			monitor.StartPoller(ctx, store, c, opts.poll)

			err = ui.Run(ui.Options{
				Context:   ctx,
				Store:     store,
				Daemon:    c.BaseURL(),
				PollTick:  time.Second,
				ThemeName: opts.prefs().Theme,
				PrefsPath: opts.prefsPath,
				PrefsFs:   opts.fs,
			})
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

func newOverrideCmd(opts *rootOptions) *cobra.Command {
	var hours int
	cmd := &cobra.Command{
		Use:   "override <image-url>",
		Short: "Show an image for a number of hours, then return to the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			resp, err := c.SetOverride(ctx, args[0], hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 1, "how long the override lasts")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the daemon status once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			status, err := c.FetchStatus(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status, lines, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVar(&lines, "lines", 20, "log lines to print")
	return cmd
}
