package sender

import (
	"context"
	"errors"

	"gelfsend/internal/global"
	"gelfsend/internal/ingest"
	"gelfsend/internal/logctx"
	"gelfsend/internal/metrics"
	"gelfsend/pkg/gelf"
)

// Sends every queued record until the queue is closed or ctx is cancelled.
// Once inputs are stopped, what is already queued is sent and the worker exits.
func (daemon *Daemon) runWorker(ctx context.Context, inputsStopped <-chan struct{}, records <-chan ingest.Record, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case record, ok := <-records:
			if !ok {
				return
			}
			daemon.forward(ctx, record)
		case <-inputsStopped:
			daemon.drain(ctx, records)
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sends queued records without waiting for inputs that may never finish
func (daemon *Daemon) drain(ctx context.Context, records <-chan ingest.Record) {
	for {
		select {
		case record, ok := <-records:
			if !ok {
				return
			}
			daemon.forward(ctx, record)
		case <-ctx.Done():
			return
		default:
			return
		}
	}
}

// Renders, paces and sends one record, then mirrors it when a beats output is configured
func (daemon *Daemon) forward(ctx context.Context, record ingest.Record) {
	if ctx.Err() != nil {
		daemon.Metrics.ObserveMessage(metrics.StatusCanceled)
		return
	}

	msg := ingest.ToMessage(record, daemon.defaults)

	if daemon.limiter != nil {
		err := daemon.limiter.Wait(ctx)
		if err != nil {
			daemon.Metrics.ObserveMessage(metrics.StatusCanceled)
			return
		}
	}

	counter := &countingTransport{inner: daemon.transport}
	err := gelf.Send(msg, counter, daemon.chunkSize, daemon.compressor)
	daemon.Metrics.ObserveChunks(counter.chunks, counter.bytes)

	switch {
	case err == nil:
		daemon.Metrics.ObserveMessage(metrics.StatusSent)
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"Sent message from %s in %d chunk(s): %s\n", record.Source, counter.chunks, msg.ShortMessage())
	case errors.Is(err, gelf.ErrMessageTooLarge):
		daemon.Metrics.ObserveMessage(metrics.StatusTooLarge)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Dropped message from %s: %v\n", record.Source, err)
	default:
		daemon.Metrics.ObserveMessage(metrics.StatusFailed)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed sending message from %s after %d chunk(s): %v\n", record.Source, counter.chunks, err)
	}

	if daemon.beats == nil {
		return
	}
	_, err = daemon.beats.Write(ctx, msg)
	if err != nil {
		daemon.Metrics.BeatsEvents.WithLabelValues(metrics.StatusFailed).Inc()
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed mirroring message to beats server: %v\n", err)
		return
	}
	daemon.Metrics.BeatsEvents.WithLabelValues(metrics.StatusSent).Inc()
}

func (transport *countingTransport) Send(datagram []byte) (err error) {
	err = transport.inner.Send(datagram)
	if err != nil {
		return
	}
	transport.chunks++
	transport.bytes += len(datagram)
	return
}
