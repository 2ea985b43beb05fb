// orchestrator.go — wires RecordSource, ring, metrics, producer, and
// consumer together and drives the run to completion.
//
// Lifecycle grounded on original_source/src/main.cpp's main(): install
// signal handlers, start the consumer, start the producer, poll at 1 Hz
// with a 30s fetch timeout, give the consumer a 5s drain window once the
// producer goes idle, join, and print the final report.

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantflow/mdfeed/config"
	"github.com/quantflow/mdfeed/consumer"
	"github.com/quantflow/mdfeed/feed"
	"github.com/quantflow/mdfeed/metrics"
	"github.com/quantflow/mdfeed/ring"
	"github.com/quantflow/mdfeed/xcontrol"
	"github.com/quantflow/mdfeed/xlog"
)

// Run builds the pipeline from config and source, and drives it to
// completion. It installs SIGINT/SIGTERM handlers for the duration of the
// call and restores the prior disposition on return.
func Run(source feed.RecordSource) error {
	xcontrol.Start()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		xlog.Drop("orchestrator: received shutdown signal", nil)
		xcontrol.Stop()
	}()

	r := ring.New(config.QueueSize)
	m := &metrics.Metrics{}

	p := feed.NewProducer(source, r, m)
	p.SetErrorSink(func(msg string) { xlog.Drop("producer", fmt.Errorf("%s", msg)) })

	c := consumer.New(r, m, len(config.Symbols), xcontrol.Running, consumer.Options{
		Core:               -1,
		EnableSampleOutput: config.EnableSampleOutput,
		SamplePrintEvery:   config.SamplePrintEvery,
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		c.Run()
	}()

	params := feed.FetchParams{
		Dataset: config.Dataset,
		Symbols: config.Symbols,
		Start:   config.StartTime,
		End:     config.EndTime,
		Schema:  config.Schema,
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.FetchTimeoutSeconds*time.Second)
	defer cancel()
	p.Start(ctx, params)

	waited := 0
	for p.IsFetching() && xcontrol.Running() {
		time.Sleep(1 * time.Second)
		waited++
		xlog.Dropf("orchestrator", "waiting... %d seconds", waited)
		if waited > config.FetchTimeoutSeconds {
			xlog.Drop("orchestrator: timeout waiting for data fetch", nil)
			break
		}
	}

	if !p.IsFetching() {
		xlog.Drop("orchestrator: fetch completed, draining consumer", nil)
		time.Sleep(config.DrainSeconds * time.Second)
	}

	p.Stop()
	xcontrol.Stop()
	<-consumerDone

	printFinalReport(m)
	return nil
}

func printFinalReport(m *metrics.Metrics) {
	snap := m.Load()
	fmt.Println()
	fmt.Println("=== Final Metrics Report ===")
	fmt.Printf("Messages received:  %d\n", snap.MessagesReceived)
	fmt.Printf("Messages processed: %d\n", snap.MessagesProcessed)
	fmt.Printf("Buffer overruns:    %d\n", snap.BufferOverruns)
	fmt.Printf("Buffer underruns:   %d\n", snap.BufferUnderruns)
	fmt.Printf("Average latency:    %d ns\n", snap.AvgLatencyNs())
	fmt.Printf("Maximum latency:    %d ns\n", snap.MaxLatencyNs)
	fmt.Printf("Push success rate:  %.1f%%\n", snap.PushSuccessRate()*100)
	fmt.Println("=============================")
}
