// Package shutdown ties a command run to process signals.
//
// WithSignals cancels the command context on SIGINT or SIGTERM, which
// interrupts blocked prompts and in-flight requests. Handler runs cleanup
// hooks (terminal restore, metrics flush) once the command has returned,
// whether it finished normally or was interrupted.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(flushMetrics)
//	defer h.Shutdown()
package shutdown
