package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ResultsMonitor/internal/collector"
	"ResultsMonitor/internal/config"
	"ResultsMonitor/internal/decoder"
	"ResultsMonitor/internal/display"
	"ResultsMonitor/internal/notifier"
	"ResultsMonitor/internal/portal"
	"ResultsMonitor/internal/prompt"
	"ResultsMonitor/internal/recorder"
	"ResultsMonitor/internal/scheduler"
)

const (
	exitOK                 = 0
	exitFailure            = 1
	exitInvalidCredentials = 2
)

var (
	cfgPath  string
	username string
	schedule string
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	os.Exit(exitCode(newRootCmd().Execute()))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, scheduler.ErrInvalidCredentials):
		fmt.Fprintln(os.Stderr, "Credentials invalid. Could not retrieve results.")
		return exitInvalidCredentials
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "monitor",
		Short:         "Watch the academic results portal for new final marks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMonitor,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to the YAML or TOML config file")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "portal username (prompted for when empty)")
	rootCmd.Flags().StringVar(&schedule, "schedule", "", `poll schedule, e.g. "@every 1m" or a cron spec`)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Fetch results once, print them and exit",
		RunE:  runCheck,
	})
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if username != "" {
		cfg.Username = username
	}
	if f := cmd.Flags().Lookup("schedule"); f != nil && f.Changed {
		cfg.Poll.Schedule = schedule
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	printBanner(cmd.OutOrStdout())
	creds, err := prompt.NewTerminal().Credentials(cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	sched, rec, err := buildScheduler(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	// The first interrupt stops the loop at the next wait; stop() then restores
	// the default handler so a second one exits immediately.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	cycle := scheduler.NewCycle(creds)
	if err := sched.Baseline(ctx, cycle); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Monitoring for new results (Press Ctrl + C to exit)...")
	if err := sched.Run(ctx, cycle); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Exiting...")
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	creds, err := prompt.NewTerminal().Credentials(cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	sched, rec, err := buildScheduler(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()
	sched.Notifier = notifier.Noop{}

	return sched.Baseline(cmd.Context(), scheduler.NewCycle(creds))
}

func buildScheduler(cfg *config.Config) (*scheduler.Scheduler, recorder.Recorder, error) {
	client, err := portal.NewClient(portal.Options{
		LoginDomain: cfg.Portal.LoginDomain,
		LoginPath:   cfg.Portal.LoginPath,
		UserAgent:   cfg.Portal.UserAgent,
		Timeout:     cfg.Portal.Timeout,
		Proxy:       cfg.Proxy,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init portal client: %w", err)
	}
	log.Printf("[INFO] portal: %s", client.LoginURL())

	col := collector.NewCollector(client, decoder.New(decoder.NewSelectorSchema(cfg.Decoder.CellSelector)))

	var notifiers notifier.Multi
	if cfg.DesktopEnabled() {
		notifiers = append(notifiers, notifier.NewDesktopNotifier())
	}
	if cfg.TelegramEnabled() {
		notifiers = append(notifiers, notifier.NewTelegramNotifier(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, cfg.Proxy))
	}
	if cfg.EmailEnabled() {
		e := cfg.Notify.Email
		notifiers = append(notifiers, notifier.NewEmailNotifier(e.Server, e.Port, e.Address, e.Password, e.To))
	}
	log.Printf("[INFO] %d notifier(s) configured", len(notifiers))

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}

	sch, err := cfg.Schedule()
	if err != nil {
		return nil, nil, fmt.Errorf("parse schedule: %w", err)
	}

	return scheduler.NewScheduler(col, notifiers, display.NewConsole(os.Stdout), rec, sch, cfg.Poll.MaxConsecutiveFailures), rec, nil
}
