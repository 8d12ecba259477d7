package workers

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// saturationWarning is the fill ratio above which a channel is reported at Warn.
const saturationWarning = 0.8

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelUsage struct {
	Name     string
	Length   int
	Capacity int
}

type HealthSnapshot struct {
	At         time.Time
	Status     string
	CPUPercent float64
	RAMPercent float32
	RSSBytes   uint64
	Goroutines int
	Channels   []ChannelUsage
}

// HealthMonitoringWorker samples the engine process and the fill level of its
// channels. Reading len and cap of a channel never blocks.
type HealthMonitoringWorker struct {
	mu             sync.Mutex
	log            *slog.Logger
	channels       []NamedChannel
	metricInterval time.Duration
	latest         HealthSnapshot
}

func NewHealthMonitoringWorker(log *slog.Logger, channels []NamedChannel, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, channels: channels, metricInterval: metricInterval}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			snapshot := w.sample(p)
			w.mu.Lock()
			w.latest = snapshot
			w.mu.Unlock()
		}
	}
}

func (w *HealthMonitoringWorker) Latest() HealthSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

func (w *HealthMonitoringWorker) sample(p *process.Process) HealthSnapshot {
	snapshot := HealthSnapshot{At: time.Now().UTC(), Goroutines: runtime.NumGoroutine()}

	if status, err := p.Status(); err == nil {
		snapshot.Status = status
	} else {
		w.log.Debug("Error while finding process status", "err", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "err", err)
	}
	if ram, err := p.MemoryPercent(); err == nil {
		snapshot.RAMPercent = ram
	} else {
		w.log.Debug("Error while finding process ram usage", "err", err)
	}
	if mem, err := p.MemoryInfo(); err == nil {
		snapshot.RSSBytes = mem.RSS
	}

	snapshot.Channels = w.channelUsage()
	for _, c := range snapshot.Channels {
		if c.Capacity > 0 && float64(c.Length)/float64(c.Capacity) >= saturationWarning {
			w.log.Warn("Channel close to saturation", "name", c.Name, "length", c.Length, "capacity", c.Capacity)
		}
	}
	w.log.Debug("Engine health",
		"cpu", snapshot.CPUPercent, "ram", snapshot.RAMPercent,
		"rss", snapshot.RSSBytes, "goroutines", snapshot.Goroutines)
	return snapshot
}

func (w *HealthMonitoringWorker) channelUsage() []ChannelUsage {
	var usage []ChannelUsage
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		usage = append(usage, ChannelUsage{Name: nc.Name, Length: v.Len(), Capacity: v.Cap()})
	}
	return usage
}
