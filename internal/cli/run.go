package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/autostart"
	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/kasa"
	"github.com/sweeney/plugwatch/internal/monitor"
	"github.com/sweeney/plugwatch/internal/mqtt"
	"github.com/sweeney/plugwatch/internal/sample"
	"github.com/sweeney/plugwatch/internal/status"
	"github.com/sweeney/plugwatch/internal/web"
)

var runMonitor bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the automation daemon",
	Long: `Run the plugwatch daemon: the monitor loop, the HTTP status and
control server, optional MQTT status publishing, and config hot
reload. The monitor loop starts immediately when --monitor is given or
autostart is enabled in the config; otherwise it waits for a start
request over HTTP.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false, "start monitoring immediately")
}

// storeController builds a plug client from the current config on
// every call, so address changes apply without restart. The client
// dials per request, there is nothing to cache.
type storeController struct {
	cfg *config.Store
}

func (s *storeController) client() *kasa.Client {
	c := s.cfg.Get()
	return kasa.NewClient(c.PlugAddr, c.PlugIndex)
}

func (s *storeController) QueryState(ctx context.Context) (device.PlugState, error) {
	return s.client().QueryState(ctx)
}

func (s *storeController) SetState(ctx context.Context, desired device.PlugState) error {
	return s.client().SetState(ctx, desired)
}

func (s *storeController) Close() error { return nil }

func runDaemon(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, loadErr := config.Load(path)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if loadErr != nil {
		log.Warn("config file problem, running with defaults",
			zap.String("path", path), zap.Error(loadErr))
	}

	store := config.NewStore(cfg)
	ch := status.NewChannel()
	dev := &storeController{cfg: store}
	sampler := sample.NewSystemSampler(log.Named("sample"))
	loop := monitor.NewLoop(log.Named("monitor"), dev, sampler, store, ch)

	var pub mqtt.Publisher
	var pubConn mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		rp := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, log.Named("mqtt"))
		pub = rp
		pubConn = rp
		defer rp.Close()

		startup := mqtt.SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}
		if err := rp.PublishSystem(startup); err != nil {
			log.Warn("failed to publish startup event", zap.Error(err))
		}
		go forwardStatus(ch, rp, log)
	}

	watcher, err := config.NewWatcher(log.Named("config"), path, store, nil)
	if err != nil {
		log.Warn("config hot reload disabled", zap.Error(err))
	} else if err := watcher.Start(); err != nil {
		log.Warn("config hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	if cfg.HTTPAddr != "" {
		controls := web.Controls{
			Toggle:       loop.Toggle,
			StartMonitor: loop.Start,
			StopMonitor:  loop.Stop,
			MonitorRunning: func() bool {
				return loop.State() == monitor.Running
			},
			UpdateConfig: func(c *config.Config) error {
				if err := config.Save(path, c); err != nil {
					return err
				}
				store.Update(c)
				return nil
			},
		}
		srv := web.New(cfg.HTTPAddr, log.Named("web"), ch, store, controls, pubConn)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server failed", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
	}

	if cfg.AutoStart {
		if reg, err := autostart.New(); err != nil {
			log.Warn("autostart registration unavailable", zap.Error(err))
		} else if err := reg.Enable(); err != nil {
			log.Warn("autostart registration failed", zap.Error(err))
		}
	}

	if cfg.AutoStart || runMonitor {
		loop.Start()
	}

	log.Info("plugwatch started",
		zap.String("plug", cfg.PlugAddr),
		zap.Int("battery_threshold", cfg.BatteryThreshold),
		zap.Strings("apps", cfg.Apps),
		zap.Duration("poll_interval", cfg.PollInterval()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Info("shutting down", zap.String("signal", s.String()))

	loop.Stop()

	if pub != nil {
		shutdown := mqtt.SystemEvent{
			Timestamp: time.Now(),
			Event:     "SHUTDOWN",
			Reason:    signalName(s),
			Retained:  true,
		}
		if err := pub.PublishSystem(shutdown); err != nil {
			log.Warn("failed to publish shutdown event", zap.Error(err))
		}
	}
	return nil
}

// forwardStatus mirrors every published status to MQTT. Runs for the
// daemon's lifetime.
func forwardStatus(ch *status.Channel, pub mqtt.Publisher, log *zap.Logger) {
	for range ch.Changes() {
		st, ok := ch.Peek()
		if !ok {
			continue
		}
		if err := pub.PublishStatus(st); err != nil {
			log.Debug("status publish failed", zap.Error(err))
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
