package workers

import (
	"context"
	"github.com/stretchr/testify/require"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shirou/gopsutil/process"
)

func TestHealthMonitoringWorker_ChannelUsage(t *testing.T) {
	req := require.New(t)
	events := make(chan int, 4)
	events <- 1
	events <- 2

	worker := NewHealthMonitoringWorker(slog.Default(), []NamedChannel{
		{Name: "events", Channel: events},
		{Name: "not-a-channel", Channel: 42},
	}, time.Second)

	usage := worker.channelUsage()
	req.Equal([]ChannelUsage{{Name: "events", Length: 2, Capacity: 4}}, usage)
}

func TestHealthMonitoringWorker_SamplesOwnProcess(t *testing.T) {
	req := require.New(t)
	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	worker := NewHealthMonitoringWorker(slog.Default(), nil, time.Second)
	snapshot := worker.sample(p)

	req.Positive(snapshot.Goroutines)
	req.False(snapshot.At.IsZero())
}

func TestHealthMonitoringWorker_Run(t *testing.T) {
	req := require.New(t)
	worker := NewHealthMonitoringWorker(slog.Default(), nil, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))
	req.False(worker.Latest().At.IsZero())
}
