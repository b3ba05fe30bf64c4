package engine

// command is the closure-based payload posted to the command queue.
// Every game-thread setter builds one of these and pushes it; the
// audio-thread drain step applies them against engine state in FIFO
// order per producer.
type command func(e *Engine)

// EventCanceler is returned by Trigger; calling Cancel() posts a cancel
// command that takes effect on the next audio block.
type EventCanceler struct {
	channel Handle
	e       *Engine
}

// Cancel posts a cancel command for the triggered event's channel.
func (c EventCanceler) Cancel() {
	if !c.channel.IsValid() {
		return
	}
	c.e.post(func(e *Engine) {
		e.stopChannel(c.channel, 0)
	})
}

// post pushes cmd onto the engine's command queue; this is the only
// suspension point on the game thread (a brief spin, falling through to
// a mutex on contention, never a blocking wait).
func (e *Engine) post(cmd command) {
	e.commands.Push(cmd)
}

// drain applies every pending command in order, called once per block
// from the audio thread before any other render step.
func (e *Engine) drain() {
	e.commands.Drain(func(c any) {
		if cmd, ok := c.(command); ok {
			cmd(e)
		}
	})
}
