package session

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle state of the single live session.
type State string

const (
	StateIdle            State = "IDLE"
	StateConnecting      State = "CONNECTING"
	StateAwaitingAuth    State = "AWAITING_AUTH"
	StateAwaitingPairing State = "AWAITING_PAIRING"
	StatePaired          State = "PAIRED"
)

const (
	// DefaultConnectTimeout bounds dial-through-pairing; firing it while
	// still unpaired force-closes the channel.
	DefaultConnectTimeout = 3500 * time.Millisecond
	// DefaultAuthGrace is how long a stored token gets to produce auth_ok
	// before the pairing prompt is surfaced anyway.
	DefaultAuthGrace = 600 * time.Millisecond
	// DefaultHeartbeatInterval is the paired-state liveness probe cadence.
	DefaultHeartbeatInterval = 5 * time.Second

	defaultEventBuffer = 32
)

// ErrEmptyPairingCode rejects blank pairing submissions before any traffic.
var ErrEmptyPairingCode = errors.New("session: pairing code is required")

// RemoteState mirrors host audio/media status. The host copy is
// authoritative; this one is a cache fed by optimistic guesses and
// status pushes.
type RemoteState struct {
	Muted    bool
	Volume   float64
	Playing  bool
	MicMuted bool
}

// Socket is the duplex text-message channel to one host.
type Socket interface {
	WriteJSON(v any) error
	ReadMessage() ([]byte, error)
	Close() error
}

// DialFunc opens a Socket to a normalized ws(s) address.
type DialFunc func(address string) (Socket, error)

// Credentials stores the pairing token between runs. AuthToken returns ""
// when no usable token exists.
type Credentials interface {
	AuthToken() string
	StoreAuthToken(token string) error
	ClearAuthToken() error
}

// Recents records successful connections for the entry surface.
type Recents interface {
	UpsertRecentHost(address, name string) error
}

// EventType identifies session notifications delivered to the UI.
type EventType string

const (
	// EventStateChanged reports every state transition.
	EventStateChanged EventType = "state_changed"
	// EventStatusUpdated reports a mirrored-state change (push or optimistic).
	EventStatusUpdated EventType = "status_updated"
	// EventPairingRequired asks the UI to surface the pairing prompt.
	EventPairingRequired EventType = "pairing_required"
	// EventPairingFailed carries a rejected pairing code's reason.
	EventPairingFailed EventType = "pairing_failed"
	// EventRateLimited carries a host lockout notice.
	EventRateLimited EventType = "rate_limited"
	// EventConnectFailed reports a failure before the session was ever
	// paired; the entry surface shows it inline.
	EventConnectFailed EventType = "connect_failed"
	// EventSessionEnded reports teardown of a previously paired session.
	// Reason is empty for expected disconnects.
	EventSessionEnded EventType = "session_ended"
)

// Event is one session notification.
type Event struct {
	Type       EventType
	State      State
	Status     RemoteState
	Reason     string
	RetryAfter time.Duration
}

// Config assembles a Session's collaborators.
type Config struct {
	DeviceID   string
	DeviceName string

	Credentials Credentials
	Recents     Recents
	Dial        DialFunc

	ConnectTimeout    time.Duration
	AuthGrace         time.Duration
	HeartbeatInterval time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.Dial == nil {
		out.Dial = DialWebsocket
	}
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.AuthGrace <= 0 {
		out.AuthGrace = DefaultAuthGrace
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = DefaultHeartbeatInterval
	}
	return out
}

// Session owns the single live connection context. All transitions run to
// completion under one mutex; the read loop, timers, and UI goroutines feed
// it events tagged with a connection generation so anything stale is inert.
type Session struct {
	cfg Config

	mu            sync.Mutex
	state         State
	sock          Socket
	gen           uint64
	address       string
	hostName      string
	paired        bool
	everPaired    bool
	tornDown      bool
	connectGuard  *time.Timer
	authGrace     *time.Timer
	heartbeatStop chan struct{}
	remote        RemoteState

	events chan Event
}

// New creates an idle session.
func New(cfg Config) *Session {
	return &Session{
		cfg:      cfg.withDefaults(),
		state:    StateIdle,
		tornDown: true,
		events:   make(chan Event, defaultEventBuffer),
	}
}

// Events delivers session notifications. The channel is buffered and sends
// never block; a consumer that stops draining loses notifications, not the
// session.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsPaired reports whether the session is authenticated and live.
func (s *Session) IsPaired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paired
}

// Remote returns a snapshot of the mirrored host state.
func (s *Session) Remote() RemoteState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

// Address returns the normalized address of the current or last target.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// HostName returns the display name of the current or last target.
func (s *Session) HostName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostName
}

// Connect validates the address, tears down any existing session, and opens
// a new channel. Validation failures are returned synchronously and open
// nothing.
func (s *Session) Connect(rawAddress, name string) error {
	address, err := NormalizeAddress(rawAddress)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.teardownLocked()
	s.tornDown = false
	s.gen++
	gen := s.gen
	s.address = address
	s.hostName = name
	s.everPaired = false
	s.setStateLocked(StateConnecting)
	s.connectGuard = time.AfterFunc(s.cfg.ConnectTimeout, func() {
		s.connectGuardFired(gen)
	})
	s.mu.Unlock()

	go s.dial(gen, address)
	return nil
}

// Disconnect tears the session down explicitly. Safe to invoke repeatedly;
// teardown side effects run at most once per connection.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// SubmitPairingCode sends a pairing request. Blank codes are rejected
// locally with no network traffic.
func (s *Session) SubmitPairingCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyPairingCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(pairCommand{
		Cmd:        CmdPair,
		Code:       code,
		DeviceID:   s.cfg.DeviceID,
		DeviceName: s.cfg.DeviceName,
	})
	return nil
}

// SendCommand emits a bare named command. A no-op, not an error, when no
// open channel exists; callers are not required to check liveness first.
func (s *Session) SendCommand(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(namedCommand{Cmd: name})
}

// SetVolume asks the host for an absolute volume level in [0,1].
func (s *Session) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(setVolumeCommand{Cmd: CmdSetVolume, Level: level})
}

// SetDeviceName renames this device for subsequent pairing requests.
func (s *Session) SetDeviceName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.DeviceName = name
}

// StepVolume emits volume_up/volume_down with an optional delta override.
func (s *Session) StepVolume(name string, delta *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(volumeStepCommand{Cmd: name, Delta: delta})
}

// UpdateRemote applies an optimistic local mutation to the mirrored state
// and notifies the UI. The next authoritative status push overrides it.
func (s *Session) UpdateRemote(mutate func(*RemoteState)) {
	s.mu.Lock()
	mutate(&s.remote)
	status := s.remote
	s.mu.Unlock()
	s.emit(Event{Type: EventStatusUpdated, Status: status})
}

func (s *Session) dial(gen uint64, address string) {
	sock, err := s.cfg.Dial(address)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		if sock != nil {
			_ = sock.Close()
		}
		return
	}

	if err != nil {
		s.teardownLocked()
		s.mu.Unlock()
		s.emit(Event{Type: EventConnectFailed, Reason: "connection failed: " + err.Error()})
		return
	}

	s.sock = sock
	s.handleOpenLocked(gen)
	s.mu.Unlock()

	go s.readLoop(gen, sock)
}

// handleOpenLocked runs the channel-open transition: try the stored token
// first, fall back to interactive pairing.
func (s *Session) handleOpenLocked(gen uint64) {
	token := ""
	if s.cfg.Credentials != nil {
		token = s.cfg.Credentials.AuthToken()
	}

	if token == "" {
		s.setStateLocked(StateAwaitingPairing)
		s.emit(Event{Type: EventPairingRequired})
		return
	}

	s.setStateLocked(StateAwaitingAuth)
	s.sendLocked(authCommand{Cmd: CmdAuth, DeviceID: s.cfg.DeviceID, Token: token})
	s.authGrace = time.AfterFunc(s.cfg.AuthGrace, func() {
		s.authGraceFired(gen)
	})
}

func (s *Session) readLoop(gen uint64, sock Socket) {
	for {
		payload, err := sock.ReadMessage()
		if err != nil {
			s.handleClosed(gen)
			return
		}
		s.handleMessage(gen, payload)
	}
}

func (s *Session) handleMessage(gen uint64, payload []byte) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}

	switch msg := DecodeInbound(payload).(type) {
	case Hello:
		log.Printf("session: connected to %s %s", msg.Server, msg.Version)
		s.mu.Unlock()

	case Status:
		s.applyStatusLocked(msg)
		status := s.remote
		s.mu.Unlock()
		s.emit(Event{Type: EventStatusUpdated, Status: status})

	case OK:
		s.mu.Unlock()

	case AuthOK:
		s.handlePairedLocked(gen)
		s.mu.Unlock()

	case PairingOK:
		if msg.Token != "" && s.cfg.Credentials != nil {
			if err := s.cfg.Credentials.StoreAuthToken(msg.Token); err != nil {
				log.Printf("session: store auth token: %v", err)
			}
		}
		s.handlePairedLocked(gen)
		s.mu.Unlock()

	case AuthError:
		if s.cfg.Credentials != nil {
			if err := s.cfg.Credentials.ClearAuthToken(); err != nil {
				log.Printf("session: clear auth token: %v", err)
			}
		}
		s.paired = false
		s.setStateLocked(StateAwaitingPairing)
		s.mu.Unlock()
		s.emit(Event{Type: EventPairingRequired})

	case PairingError:
		s.mu.Unlock()
		s.emit(Event{Type: EventPairingFailed, Reason: msg.Reason})

	case RateLimited:
		s.mu.Unlock()
		s.emit(Event{
			Type:       EventRateLimited,
			Reason:     msg.Reason,
			RetryAfter: time.Duration(msg.RetryAfterSecs) * time.Second,
		})

	case ServerError:
		if isUnauthorized(msg.Text()) {
			s.paired = false
			s.setStateLocked(StateAwaitingPairing)
			s.mu.Unlock()
			s.emit(Event{Type: EventPairingRequired})
			return
		}
		log.Printf("session: host error: %s", msg.Text())
		s.mu.Unlock()

	case Shutdown:
		s.teardownLocked()
		s.mu.Unlock()
		s.emit(Event{Type: EventSessionEnded, Reason: "server shut down"})

	case Unrecognized:
		log.Printf("session: ignoring unrecognized message (%d bytes)", len(msg.Raw))
		s.mu.Unlock()

	default:
		s.mu.Unlock()
	}
}

func (s *Session) handleClosed(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}

	wasPaired := s.everPaired
	s.teardownLocked()
	s.mu.Unlock()

	if wasPaired {
		// Expected disconnect path (host sleeping etc.): no error text.
		s.emit(Event{Type: EventSessionEnded})
	} else {
		s.emit(Event{Type: EventConnectFailed, Reason: "connection failed"})
	}
}

func (s *Session) handlePairedLocked(gen uint64) {
	s.paired = true
	s.everPaired = true
	s.stopTimersLocked()
	if s.cfg.Recents != nil {
		if err := s.cfg.Recents.UpsertRecentHost(s.address, s.hostName); err != nil {
			log.Printf("session: record recent host: %v", err)
		}
	}
	s.setStateLocked(StatePaired)
	s.startHeartbeatLocked(gen)
}

func (s *Session) applyStatusLocked(msg Status) {
	if msg.Muted != nil {
		s.remote.Muted = *msg.Muted
	}
	if msg.Volume != nil {
		s.remote.Volume = *msg.Volume
	}
	if msg.Playing != nil {
		s.remote.Playing = *msg.Playing
	}
	if msg.MicMuted != nil {
		s.remote.MicMuted = *msg.MicMuted
	}
}

func (s *Session) connectGuardFired(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.paired {
		s.mu.Unlock()
		return
	}
	s.teardownLocked()
	s.mu.Unlock()
	s.emit(Event{Type: EventConnectFailed, Reason: "connection timed out"})
}

func (s *Session) authGraceFired(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.paired {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StateAwaitingPairing)
	s.mu.Unlock()
	s.emit(Event{Type: EventPairingRequired})
}

func (s *Session) startHeartbeatLocked(gen uint64) {
	s.stopHeartbeatLocked()
	stop := make(chan struct{})
	s.heartbeatStop = stop

	go func() {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.heartbeatTick(gen)
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) heartbeatTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.paired {
		return
	}
	s.sendLocked(namedCommand{Cmd: CmdGetStatus})
}

func (s *Session) stopHeartbeatLocked() {
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
		s.heartbeatStop = nil
	}
}

func (s *Session) stopTimersLocked() {
	if s.connectGuard != nil {
		s.connectGuard.Stop()
		s.connectGuard = nil
	}
	if s.authGrace != nil {
		s.authGrace.Stop()
		s.authGrace = nil
	}
}

// teardownLocked runs the disconnect side effects at most once per
// connection. Ordering matters: the heartbeat stops before the socket
// closes so nothing sends on a closing channel.
func (s *Session) teardownLocked() {
	if s.tornDown {
		return
	}
	s.tornDown = true
	s.gen++
	s.stopHeartbeatLocked()
	s.stopTimersLocked()
	if s.sock != nil {
		_ = s.sock.Close()
		s.sock = nil
	}
	s.paired = false
	s.setStateLocked(StateIdle)
}

// sendLocked silently drops the command when no open channel exists; the UI
// gates action availability by the paired flag, so failed sends surface no
// error.
func (s *Session) sendLocked(cmd any) {
	if s.sock == nil {
		return
	}
	if err := s.sock.WriteJSON(cmd); err != nil {
		log.Printf("session: dropped command: %v", err)
	}
}

func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.state = state
	s.emit(Event{Type: EventStateChanged, State: state})
}

func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

func isUnauthorized(text string) bool {
	lowered := strings.ToLower(text)
	return strings.Contains(lowered, "unauthorized") || strings.Contains(lowered, "not_authenticated")
}
