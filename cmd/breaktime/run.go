package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/hackebrot/breaktime/internal/assets"
	"github.com/hackebrot/breaktime/internal/config"
	"github.com/hackebrot/breaktime/internal/notify"
	"github.com/hackebrot/breaktime/internal/sound"
	"github.com/hackebrot/breaktime/pkg/scheduler"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

// deps are the side-effecting collaborators shared by run and sendTest.
type deps struct {
	iconPath string
	notifier *notify.DBusNotifier
	player   scheduler.SoundPlayer
}

// setup provisions the icon and connects to the notification server. Any
// error is fatal to startup.
func setup(ctx context.Context, cfg *config.Config) (*deps, error) {
	iconDir := cfg.IconDir
	if iconDir == "" {
		dir, err := assets.DefaultDir(cfg.AppName)
		if err != nil {
			return nil, err
		}
		iconDir = dir
	}

	iconPath, err := assets.NewProvisioner(afero.NewOsFs(), iconDir).ProvisionIcon()
	if err != nil {
		return nil, fmt.Errorf("provisioning icon: %w", err)
	}
	slog.Debug("icon provisioned", "path", iconPath)

	player := scheduler.NopPlayer
	if !cfg.Mute {
		strategies, err := sound.DefaultStrategies(sound.Options{Dir: cfg.SoundDir, Command: cfg.SoundCommand})
		if err != nil {
			return nil, err
		}
		player = sound.NewPlayer(cfg.SoundTimeout, strategies...)
	}

	notifier, err := notify.Dial(ctx, notify.Options{
		AppName:     cfg.AppName,
		Attempts:    cfg.NotifyRetries,
		CallTimeout: cfg.NotifyTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &deps{
		iconPath: iconPath,
		notifier: notifier,
		player:   player,
	}, nil
}

// run starts the scheduler and blocks until an interrupt or SIGTERM.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.notifier.Close(); err != nil {
			slog.Warn("error closing notifier", "error", err)
		}
	}()

	sched, err := scheduler.New(scheduler.Options{
		Timings:  scheduler.DefaultTimings(),
		Notifier: d.notifier,
		Sound:    d.player,
		Random:   scheduler.NewUniformSource(uint64(time.Now().UnixNano())),
		IconPath: d.iconPath,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			slog.Info("received shutdown signal")
			sched.Stop()
		case <-ctx.Done():
		}
	}()

	sched.Start(ctx)
	return nil
}

// sendTest shows one sample notification and plays the message sound.
func sendTest(ctx context.Context, cfg *config.Config) error {
	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.notifier.Close()

	err = d.notifier.Show(ctx, scheduler.Notification{
		Title:    "breaktime",
		Body:     "Notifications are working.",
		Urgency:  scheduler.UrgencyNormal,
		IconPath: d.iconPath,
	})
	if err != nil {
		return err
	}

	if err := d.player.Play(ctx, scheduler.SoundMessage); err != nil {
		slog.Warn("failed to play sound", "sound", scheduler.SoundMessage.String(), "error", err)
	}
	return nil
}
