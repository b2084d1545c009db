package runtime

// runSocket stands in for thread_socket. This runtime has no network
// poller of its own (see SPEC_FULL.md's socket-thread scope decision):
// the goroutine exists only so the thread topology matches skynet's
// monitor/timer/socket/worker shape, and so a future socket module can
// be wired in here without touching the rest of the startup sequence.
// It parks until told to stop rather than spinning.
func (rt *Runtime) runSocket(stop <-chan struct{}) {
	<-stop
}
