package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/dskochubey/selenium-automation-bundle/internal/hidden"
	"github.com/dskochubey/selenium-automation-bundle/internal/launcher"
	"github.com/dskochubey/selenium-automation-bundle/internal/snapshot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	var newLog string
	if entry.HasCaller() {
		newLog = fmt.Sprintf("[%s] [%s] [%s:%d] %s\n", timestamp, entry.Level, path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	} else {
		newLog = fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message)
	}

	b.WriteString(newLog)
	return b.Bytes(), nil
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(true)
	log.SetFormatter(&LogFormatter{})
}

var configPath string

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration %s: %w", configPath, err)
	}
	if cfg.Debug {
		log.SetLevel(log.TraceLevel)
	}
	return cfg, nil
}

func newSnapshotCmd() *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Open every configured page and compare it with its baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			session, err := launcher.NewSession(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if errClose := session.Close(); errClose != nil {
					log.Debugf("Error closing browser: %v", errClose)
				}
			}()
			session.Visual.SetUpdate(update)

			report, err := snapshot.NewRunner(session).Run(cmd.Context())
			for _, o := range report.Outcomes {
				state := "matched"
				if o.Result.Created {
					state = "stored"
				}
				log.Infof("%s (%s): %s in %s", o.Name, o.Key, state, o.Duration)
			}
			if err != nil {
				return err
			}
			log.Infof("Run %s: %d snapshots passed", report.RunID, len(report.Outcomes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "overwrite baselines with the new screenshots")
	return cmd
}

func newHiddenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hidden",
		Short: "List the page keys of the hidden elements file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.HiddenElements.File == "" {
				return fmt.Errorf("hidden-elements.file is not set in %s", configPath)
			}
			table, err := hidden.Load(cfg.HiddenElements.File)
			if err != nil {
				return err
			}
			for _, key := range table.Keys() {
				selectors, _ := table.Lookup(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", key, len(selectors))
			}
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "bundle",
		Short:         "Page object test bundle tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the configuration file")
	root.AddCommand(newSnapshotCmd(), newHiddenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
