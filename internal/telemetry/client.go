// Package telemetry owns the persistent connection to the machine's push
// feed and folds partial frames into the canonical MachineState snapshot.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"brewlink/internal/logger"
	"brewlink/internal/models"

	"github.com/gorilla/websocket"
)

// Phase is the client's connection state.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseLive
	PhaseStale
	PhaseReconnectWait
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "CONNECTING"
	case PhaseLive:
		return "LIVE"
	case PhaseStale:
		return "STALE"
	case PhaseReconnectWait:
		return "RECONNECT_WAIT"
	default:
		return "DISCONNECTED"
	}
}

// Defaults for the staleness/backoff policy. All three are config-overridable;
// they are observed machine behavior, not load-bearing invariants.
const (
	DefaultStaleTimeout = 5 * time.Second
	DefaultBackoffBase  = 1 * time.Second
	DefaultBackoffCap   = 15 * time.Second

	dialTimeout = 10 * time.Second
)

// Config holds the connection policy for one machine feed.
type Config struct {
	URL          string        // ws:// endpoint of the machine's telemetry feed
	StaleTimeout time.Duration // no frame/heartbeat for this long flips Stale
	BackoffBase  time.Duration // first reconnect delay
	BackoffCap   time.Duration // reconnect delay ceiling
}

func (c Config) withDefaults() Config {
	if c.StaleTimeout <= 0 {
		c.StaleTimeout = DefaultStaleTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = DefaultBackoffCap
	}
	return c
}

// Conn is the slice of a websocket connection the client reads from.
// *websocket.Conn satisfies it; tests substitute scripted connections.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// DialFunc opens one connection attempt.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Observer receives every published state change, in publish order, on the
// client's event loop. Observers must not block.
type Observer func(models.MachineState)

type eventKind int

const (
	evOpened eventKind = iota
	evOpenFailed
	evFrame
	evClosed
	evStaleCheck
	evReconnect
	evDisable
)

// event is one message on the internal queue. All state mutation happens on
// the run loop, so frame handling, timers and teardown can never race.
type event struct {
	kind  eventKind
	epoch uint64 // connection generation the event belongs to
	conn  Conn
	raw   []byte
	err   error
}

// Client turns the machine's unreliable push feed into a stale-aware
// canonical MachineState. It reconnects forever while enabled; transport
// failures only ever surface as the ws_connected/stale flags.
type Client struct {
	cfg  Config
	log  *logger.Logger
	dial DialFunc

	mu        sync.Mutex
	snapshot  models.MachineState
	observers []Observer
	enabled   bool
	events    chan event
	stopped   chan struct{} // closed on disable; unblocks late posters

	// Owned by the run loop.
	phase      Phase
	epoch      uint64
	attempts   int
	conn       Conn
	lastData   time.Time
	staleTimer *time.Timer
	reconTimer *time.Timer
}

// NewClient builds a client for the given feed. It stays idle until
// Connect(true).
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:  cfg.withDefaults(),
		log:  log,
		dial: gorillaDial,
	}
}

// Notify registers an observer for published state changes. Register before
// Connect; ordering across observers follows registration order.
func (c *Client) Notify(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns a copy of the current canonical state.
func (c *Client) Snapshot() models.MachineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Connect enables or disables the feed. Enabling starts the event loop and
// the first connection attempt; disabling tears down the connection, cancels
// every pending timer and resets the snapshot to defaults.
func (c *Client) Connect(enabled bool) {
	if !enabled {
		c.Disable()
		return
	}
	c.mu.Lock()
	if c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = true
	c.events = make(chan event, 64)
	c.stopped = make(chan struct{})
	events, stopped := c.events, c.stopped
	c.mu.Unlock()

	go c.run(events, stopped)
}

// Disable stops the client. Blocks until the event loop has acknowledged the
// teardown, after which no further state mutation can occur.
func (c *Client) Disable() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = false
	events, stopped := c.events, c.stopped
	c.mu.Unlock()

	select {
	case events <- event{kind: evDisable}:
	case <-stopped:
	}
	<-stopped
}

// post delivers an event to the loop unless the client has been torn down.
// Reports whether the event was accepted.
func post(events chan<- event, stopped <-chan struct{}, ev event) bool {
	select {
	case events <- ev:
		return true
	case <-stopped:
		return false
	}
}

// run is the single goroutine that owns phase, connection and timers.
func (c *Client) run(events chan event, stopped chan struct{}) {
	c.phase = PhaseConnecting
	c.startDial(events, stopped)

	for ev := range events {
		if ev.kind == evDisable {
			c.teardown(stopped)
			return
		}
		if ev.epoch != c.epoch {
			// Late event from an abandoned connection or canceled timer.
			continue
		}
		switch ev.kind {
		case evOpened:
			c.handleOpened(ev.conn, events, stopped)
		case evOpenFailed:
			c.log.Infow("feed_dial_failed", "err", ev.err, "attempt", c.attempts)
			c.scheduleReconnect(events, stopped)
		case evFrame:
			c.handleFrame(ev.raw, events, stopped)
		case evClosed:
			c.log.Infow("feed_closed", "err", ev.err)
			c.handleClosed(events, stopped)
		case evStaleCheck:
			c.handleStaleCheck(events, stopped)
		case evReconnect:
			c.phase = PhaseConnecting
			c.startDial(events, stopped)
		}
	}
}

func (c *Client) startDial(events chan event, stopped chan struct{}) {
	epoch := c.epoch
	url := c.cfg.URL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		conn, err := c.dial(ctx, url)
		if err != nil {
			post(events, stopped, event{kind: evOpenFailed, epoch: epoch, err: err})
			return
		}
		if !post(events, stopped, event{kind: evOpened, epoch: epoch, conn: conn}) {
			// Torn down while dialing; nobody owns this connection anymore.
			_ = conn.Close()
		}
	}()
}

func (c *Client) handleOpened(conn Conn, events chan event, stopped chan struct{}) {
	c.conn = conn
	c.phase = PhaseLive
	c.attempts = 0
	c.lastData = time.Now()
	c.armStaleTimer(events, stopped)

	c.publish(func(st *models.MachineState) {
		st.WSConnected = true
		st.Stale = false
	})
	c.log.Infow("feed_connected", "url", c.cfg.URL)

	epoch := c.epoch
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				post(events, stopped, event{kind: evClosed, epoch: epoch, err: err})
				return
			}
			post(events, stopped, event{kind: evFrame, epoch: epoch, raw: raw})
		}
	}()
}

func (c *Client) handleFrame(raw []byte, events chan event, stopped chan struct{}) {
	var frame models.TelemetryFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		// Malformed frames are dropped; they must never kill the loop.
		c.log.Debugw("frame_dropped", "err", err)
		return
	}

	c.lastData = time.Now()
	wasStale := c.phase == PhaseStale
	c.phase = PhaseLive
	c.armStaleTimer(events, stopped)

	if !frame.HasData() {
		// Heartbeat: liveness proof only. Publish solely when it clears a
		// stale flag, so observers don't see no-op updates.
		if wasStale {
			c.publish(func(st *models.MachineState) {
				st.Stale = false
				st.WSConnected = true
			})
		}
		return
	}

	c.publish(func(st *models.MachineState) {
		frame.ApplyTo(st)
		st.Stale = false
		st.WSConnected = true
	})
}

func (c *Client) handleClosed(events chan event, stopped chan struct{}) {
	c.dropConn()
	c.publish(func(st *models.MachineState) {
		st.WSConnected = false
	})
	c.scheduleReconnect(events, stopped)
}

func (c *Client) handleStaleCheck(events chan event, stopped chan struct{}) {
	if c.phase != PhaseLive {
		return
	}
	remaining := c.cfg.StaleTimeout - time.Since(c.lastData)
	if remaining > 0 {
		// A frame slipped in between the timer firing and us handling it.
		c.staleTimer = c.afterFunc(remaining, evStaleCheck, events, stopped)
		return
	}
	// Staleness never drops the connection; data may still resume.
	c.phase = PhaseStale
	c.publish(func(st *models.MachineState) {
		st.Stale = true
	})
	c.log.Infow("feed_stale", "timeout", c.cfg.StaleTimeout)
}

// scheduleReconnect moves to ReconnectWait with exponential backoff. Retries
// are unbounded; only the delay is capped.
func (c *Client) scheduleReconnect(events chan event, stopped chan struct{}) {
	delay := backoffDelay(c.cfg.BackoffBase, c.cfg.BackoffCap, c.attempts)
	c.attempts++
	c.phase = PhaseReconnectWait
	c.reconTimer = c.afterFunc(delay, evReconnect, events, stopped)
	c.log.Infow("feed_reconnect_scheduled", "delay", delay, "attempt", c.attempts)
}

func (c *Client) afterFunc(d time.Duration, kind eventKind, events chan event, stopped chan struct{}) *time.Timer {
	epoch := c.epoch
	return time.AfterFunc(d, func() {
		post(events, stopped, event{kind: kind, epoch: epoch})
	})
}

func (c *Client) armStaleTimer(events chan event, stopped chan struct{}) {
	if c.staleTimer != nil {
		c.staleTimer.Stop()
	}
	c.staleTimer = c.afterFunc(c.cfg.StaleTimeout, evStaleCheck, events, stopped)
}

// dropConn abandons the current connection and bumps the epoch so its reader
// and timers can no longer reach the loop.
func (c *Client) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.staleTimer != nil {
		c.staleTimer.Stop()
		c.staleTimer = nil
	}
	if c.reconTimer != nil {
		c.reconTimer.Stop()
		c.reconTimer = nil
	}
	c.epoch++
}

// teardown is the only path back to Disconnected: close the connection, stop
// every timer, reset the snapshot to defaults and publish the reset once.
func (c *Client) teardown(stopped chan struct{}) {
	c.dropConn()
	c.phase = PhaseDisconnected
	c.attempts = 0
	c.publish(func(st *models.MachineState) {
		*st = models.MachineState{}
	})
	close(stopped)
	c.log.Infow("feed_disabled")
}

// publish applies a mutation to the snapshot and fans the copy out to the
// observers, in registration order, on the loop goroutine.
func (c *Client) publish(mutate func(*models.MachineState)) {
	c.mu.Lock()
	mutate(&c.snapshot)
	c.snapshot.UpdatedAt = time.Now().UTC()
	st := c.snapshot
	observers := c.observers
	c.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

// backoffDelay computes min(base * 2^attempts, cap).
func backoffDelay(base, cap time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	if d > cap {
		return cap
	}
	return d
}
