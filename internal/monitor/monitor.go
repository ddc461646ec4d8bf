// Package monitor implements the plug automation loop: sample host
// conditions, decide the desired plug state, reconcile the device
// against it, and publish the result. All device I/O and OS sampling
// happen on the loop's own goroutine; presentation layers interact
// through Start, Stop, Toggle and the status channel only.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/policy"
	"github.com/sweeney/plugwatch/internal/sample"
	"github.com/sweeney/plugwatch/internal/status"
)

// State is the loop lifecycle state.
type State int32

const (
	Stopped State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "stopped"
}

// Loop runs the sample→decide→reconcile→publish cycle on a fixed
// interval. Only one Loop instance should be active per process.
type Loop struct {
	log     *zap.Logger
	dev     device.Controller
	sampler sample.Sampler
	cfg     *config.Store
	ch      *status.Channel

	// writeMu serializes the cycle's read-modify-write against manual
	// toggles, so two writers can never interleave mid-cycle. It also
	// guards streak and lastDesired.
	writeMu     sync.Mutex
	streak      int
	lastDesired device.PlugState

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	// Injectable for tests.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewLoop creates a stopped loop.
func NewLoop(log *zap.Logger, dev device.Controller, sampler sample.Sampler, cfg *config.Store, ch *status.Channel) *Loop {
	return &Loop{
		log:         log,
		dev:         dev,
		sampler:     sampler,
		cfg:         cfg,
		ch:          ch,
		lastDesired: device.StateUnknown,
		now:         time.Now,
		after:       time.After,
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start transitions Stopped → Running and spawns the cycle goroutine.
// A no-op with a warning status when already running.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.state != Stopped {
		l.mu.Unlock()
		l.log.Warn("monitor already running, start ignored")
		l.ch.Publish(status.Status{
			Running: true,
			Result:  status.ResultOK,
			Message: "monitor already running",
			Time:    l.now(),
		})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.state = Running
	l.mu.Unlock()

	monitorRunning.Set(1)
	cfg := l.cfg.Get()
	l.log.Info("monitor started",
		zap.String("plug", cfg.PlugAddr),
		zap.Int("socket", cfg.PlugIndex),
		zap.Int("battery_threshold", cfg.BatteryThreshold),
		zap.Strings("apps", cfg.Apps),
		zap.Duration("interval", cfg.PollInterval()))
	go l.run(ctx)
}

// Stop signals cancellation and waits for the loop to exit. The loop
// observes the signal within one poll interval; no device write is
// issued afterwards. Safe to call repeatedly and from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state == Stopped {
		l.mu.Unlock()
		return
	}
	l.state = Stopping
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	<-done

	l.mu.Lock()
	l.state = Stopped
	l.mu.Unlock()

	monitorRunning.Set(0)
	l.log.Info("monitor stopped")
	l.ch.Publish(status.Status{
		Running: false,
		Result:  status.ResultOK,
		Message: "monitor stopped",
		Time:    l.now(),
	})
}

// Toggle flips the plug state immediately, serialized with the
// automatic cycle so the two never produce overlapping writes. The
// result returns synchronously; it is also recorded in status. The
// next automatic cycle re-queries the device, so automation converges
// back to the policy-driven state on the following interval.
func (l *Loop) Toggle(ctx context.Context) (device.PlugState, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	st := status.Status{
		Running: l.State() == Running,
		Message: "manual toggle",
		Time:    l.now(),
	}

	actual, err := l.dev.QueryState(ctx)
	if err != nil {
		st.Actual = device.StateUnknown
		st.Result = resultFor(err)
		st.Err = err.Error()
		st.Streak = l.streak
		l.ch.Publish(st)
		l.log.Warn("manual toggle: query failed", zap.Error(err))
		return device.StateUnknown, err
	}

	desired := actual.Opposite()
	st.Desired = desired
	if err := l.dev.SetState(ctx, desired); err != nil {
		st.Actual = actual
		st.Result = resultFor(err)
		st.Err = err.Error()
		st.Streak = l.streak
		l.ch.Publish(st)
		l.log.Warn("manual toggle: write failed", zap.Error(err))
		return device.StateUnknown, err
	}

	writesTotal.WithLabelValues(string(desired)).Inc()
	st.Actual = desired
	st.Result = status.ResultOK
	st.Streak = l.streak
	l.ch.Publish(st)
	l.log.Info("manual toggle", zap.String("state", string(desired)))
	return desired, nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		cfg := l.cfg.Get()
		l.cycle(ctx, cfg)

		// The wait is cancellable immediately: Stop never rides out a
		// full interval.
		select {
		case <-ctx.Done():
			return
		case <-l.after(cfg.PollInterval()):
		}
	}
}

// cycle runs one sample→decide→reconcile→publish pass. All I/O
// failures are converted into the published status; nothing here can
// stop the loop.
func (l *Loop) cycle(ctx context.Context, cfg *config.Config) {
	smp := l.sampler.Sample(ctx)

	l.writeMu.Lock()
	desired := policy.Decide(policy.Input{
		Sample:    smp,
		Threshold: cfg.BatteryThreshold,
		Monitored: cfg.Apps,
		Previous:  l.lastDesired,
	})

	st := status.Status{
		Sample:  smp,
		Desired: desired,
		Result:  status.ResultOK,
		Running: true,
		Time:    l.now(),
	}

	actual, err := l.dev.QueryState(ctx)
	if err != nil {
		// Transient: skip the write this cycle, retry next interval.
		l.streak++
		st.Actual = device.StateUnknown
		st.Result = resultFor(err)
		st.Err = err.Error()
		st.Streak = l.streak
		l.writeMu.Unlock()

		cycleFailures.WithLabelValues(string(st.Result)).Inc()
		l.log.Warn("plug query failed, skipping write this cycle",
			zap.Error(err), zap.Int("streak", st.Streak))
		l.finish(st)
		return
	}
	st.Actual = actual

	if desired != device.StateUnknown {
		l.lastDesired = desired
	}

	if desired != device.StateUnknown && desired != actual {
		// A write is either sent and observed, or abandoned before
		// being sent, never left half-applied across shutdown.
		if ctx.Err() != nil {
			l.writeMu.Unlock()
			return
		}
		if werr := l.dev.SetState(ctx, desired); werr != nil {
			l.streak++
			st.Result = resultFor(werr)
			st.Err = werr.Error()
			cycleFailures.WithLabelValues(string(st.Result)).Inc()
			l.log.Warn("plug write failed", zap.Error(werr), zap.Int("streak", l.streak))
		} else {
			st.Actual = desired
			writesTotal.WithLabelValues(string(desired)).Inc()
			l.log.Info("plug switched",
				zap.String("state", string(desired)),
				zap.Int("battery", smp.Battery),
				zap.Bool("battery_ok", smp.BatteryOK),
				zap.Bool("apps_running", smp.AnyRunning(cfg.Apps)))
		}
	}

	if st.Result == status.ResultOK {
		l.streak = 0
	}
	st.Streak = l.streak
	l.writeMu.Unlock()

	l.finish(st)
}

func (l *Loop) finish(st status.Status) {
	cyclesTotal.Inc()
	if st.Sample.BatteryOK {
		batteryPercent.Set(float64(st.Sample.Battery))
	}
	if st.Actual == device.StateOn {
		plugOn.Set(1)
	} else if st.Actual == device.StateOff {
		plugOn.Set(0)
	}
	l.ch.Publish(st)
}

func resultFor(err error) status.Result {
	if device.IsNetwork(err) {
		return status.ResultNetworkError
	}
	return status.ResultDeviceError
}
