package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/pkg/types"
)

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

func (s State) Terminal() bool { return s == StateClosed || s == StateErrored }

var ErrAlreadyStarted = errors.New("session already started")

type eventKind int

const (
	evOpened eventKind = iota
	evOpenFailed
	evMessage
	evEnded
)

// Event is a backend outcome produced off the event loop. It must be handed
// back to the owning session through Handle on the loop goroutine.
type Event struct {
	sess    *Session
	kind    eventKind
	backend Backend
	payload json.RawMessage
	err     error
}

func (e Event) Session() *Session { return e.sess }

type Options struct {
	Dialer Dialer
	// Emit writes an envelope to the client. Called only from the event loop.
	Emit func(types.Envelope)
	// Post hands an Event to the event loop. It returns false once the loop
	// has stopped, in which case the event is not delivered.
	Post         func(Event) bool
	Logger       *log.Logger
	OnTransition func(from, to State)
	OnError      func(error)
}

// Session is one realtime conversation. All methods except State and the
// counters must be called from the owning event loop goroutine.
type Session struct {
	ID        string
	Voice     string
	CreatedAt time.Time

	opts    Options
	state   atomic.Int32
	backend Backend
	cancel  context.CancelFunc

	dials  atomic.Int64
	closes atomic.Int64
}

func New(id string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Emit == nil {
		opts.Emit = func(types.Envelope) {}
	}
	return &Session{ID: id, CreatedAt: time.Now(), opts: opts}
}

func (s *Session) State() State { return State(s.state.Load()) }

// DialAttempts reports how many backend connections were requested.
func (s *Session) DialAttempts() int64 { return s.dials.Load() }

// BackendCloses reports how many backend handles were closed.
func (s *Session) BackendCloses() int64 { return s.closes.Load() }

// Connect moves idle to connecting and starts one backend dial. The dial
// result arrives later as an Event.
func (s *Session) Connect(ctx context.Context, cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if s.State() != StateIdle {
		return fmt.Errorf("%w: state %s", ErrAlreadyStarted, s.State())
	}

	dctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.setState(StateConnecting)
	s.dials.Add(1)
	go s.dial(dctx, cfg)
	return nil
}

func (s *Session) dial(ctx context.Context, cfg Config) {
	b, err := s.opts.Dialer.Dial(ctx, cfg)
	if err != nil {
		s.opts.Post(Event{sess: s, kind: evOpenFailed, err: err})
		return
	}
	if !s.opts.Post(Event{sess: s, kind: evOpened, backend: b}) {
		s.opts.Logger.Printf("session %s: backend opened after relay stopped, closing", s.ID)
		s.closeBackend(b)
	}
}

func (s *Session) receive(b Backend) {
	for {
		payload, err := b.Receive()
		if err != nil {
			s.opts.Post(Event{sess: s, kind: evEnded, err: err})
			return
		}
		if !s.opts.Post(Event{sess: s, kind: evMessage, payload: payload}) {
			return
		}
	}
}

// Handle applies a backend event.
func (s *Session) Handle(ev Event) {
	switch ev.kind {
	case evOpened:
		if s.State() != StateConnecting {
			s.opts.Logger.Printf("session %s: late backend open in state %s, closing", s.ID, s.State())
			s.closeBackend(ev.backend)
			return
		}
		s.backend = ev.backend
		s.setState(StateActive)
		s.opts.Emit(types.Connected())
		go s.receive(ev.backend)

	case evOpenFailed:
		if s.State() != StateConnecting {
			return
		}
		s.fail(fmt.Errorf("%w: %v", errs.ErrBackendConnectFailed, ev.err))

	case evMessage:
		if s.State() != StateActive {
			return
		}
		s.opts.Emit(types.GeminiMessage(ev.payload))

	case evEnded:
		if s.State() != StateActive {
			return
		}
		if ev.err == nil || errors.Is(ev.err, io.EOF) {
			s.release()
			s.setState(StateClosed)
			s.opts.Emit(types.Disconnected())
			return
		}
		s.fail(fmt.Errorf("%w: %v", errs.ErrBackendStream, ev.err))
	}
}

// SendAudio forwards a frame when the session is active. It reports false
// when the frame was not forwarded.
func (s *Session) SendAudio(ctx context.Context, data []byte, mimeType string) (bool, error) {
	if s.State() != StateActive || s.backend == nil {
		return false, nil
	}
	if err := s.backend.SendAudio(ctx, data, mimeType); err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrBackendStream, err)
	}
	return true, nil
}

// Disconnect tears the session down on client request. It is a no-op unless
// the session is connecting or active, and reports whether teardown happened.
func (s *Session) Disconnect() bool {
	switch s.State() {
	case StateConnecting, StateActive:
	default:
		return false
	}
	s.setState(StateClosing)
	s.release()
	s.setState(StateClosed)
	s.opts.Emit(types.Disconnected())
	return true
}

// TransportClosed releases everything without notifying the client.
func (s *Session) TransportClosed() {
	s.release()
	if !s.State().Terminal() {
		s.setState(StateClosed)
	}
}

// Discard is used when a new connect replaces this session.
func (s *Session) Discard() { s.TransportClosed() }

func (s *Session) fail(err error) {
	s.release()
	s.setState(StateErrored)
	s.opts.Logger.Printf("session %s: %v", s.ID, err)
	s.opts.Emit(types.ErrorEnvelope(err.Error()))
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

func (s *Session) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.backend != nil {
		b := s.backend
		s.backend = nil
		s.closeBackend(b)
	}
}

func (s *Session) closeBackend(b Backend) {
	s.closes.Add(1)
	if err := b.Close(); err != nil {
		s.opts.Logger.Printf("session %s: backend close: %v", s.ID, err)
	}
}

func (s *Session) setState(to State) {
	from := State(s.state.Swap(int32(to)))
	if from != to && s.opts.OnTransition != nil {
		s.opts.OnTransition(from, to)
	}
}
