package relay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/steveyiyo/voicerelay/internal/core/errs"
	"github.com/steveyiyo/voicerelay/internal/core/session"
	"github.com/steveyiyo/voicerelay/internal/core/voice"
	"github.com/steveyiyo/voicerelay/internal/observability"
	"github.com/steveyiyo/voicerelay/pkg/types"
)

// Emitter delivers envelopes to the client transport.
type Emitter interface {
	Emit(env types.Envelope) error
}

type EmitterFunc func(types.Envelope) error

func (f EmitterFunc) Emit(env types.Envelope) error { return f(env) }

type Options struct {
	Dialer       session.Dialer
	Instructions *Instructions
	Voices       *voice.Table
	Model        string
	Metrics      *observability.Metrics
	Logger       *log.Logger
	OnError      func(error)
}

// Pump relays one client connection. Run is the connection's event loop: it
// is the only goroutine that changes session state or writes to the client,
// so frames are handled strictly in arrival order.
type Pump struct {
	id        string
	opts      Options
	emitter   Emitter
	createdAt time.Time

	events   chan session.Event
	done     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once

	sess    *session.Session
	current atomic.Pointer[session.Session]
	seq     int

	forwarded atomic.Int64
	dropped   atomic.Int64
}

func New(id string, emitter Emitter, opts Options) *Pump {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Voices == nil {
		opts.Voices = voice.NewTable(voice.Default)
	}
	return &Pump{
		id:        id,
		opts:      opts,
		emitter:   emitter,
		createdAt: time.Now(),
		events:    make(chan session.Event),
		done:      make(chan struct{}),
		quit:      make(chan struct{}),
	}
}

func (p *Pump) ID() string { return p.id }

// Run processes frames until the channel closes, ctx ends or Close is called.
// On return any live backend session has been released.
func (p *Pump) Run(ctx context.Context, frames <-chan []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if p.sess != nil {
			p.sess.TransportClosed()
		}
		close(p.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.quit:
			return nil
		case raw, ok := <-frames:
			if !ok {
				return nil
			}
			p.handleFrame(ctx, raw)
		case ev := <-p.events:
			ev.Session().Handle(ev)
		}
	}
}

// Close stops Run from another goroutine.
func (p *Pump) Close() error {
	p.quitOnce.Do(func() { close(p.quit) })
	return nil
}

// Done is closed once Run has returned.
func (p *Pump) Done() <-chan struct{} { return p.done }

func (p *Pump) ForwardedFrames() int64 { return p.forwarded.Load() }
func (p *Pump) DroppedFrames() int64   { return p.dropped.Load() }

// Session returns the current session, if any.
func (p *Pump) Session() *session.Session { return p.current.Load() }

func (p *Pump) Summary() types.SessionSummary {
	sum := types.SessionSummary{
		ConnectionID:    p.id,
		State:           session.StateIdle.String(),
		ForwardedFrames: p.forwarded.Load(),
		DroppedFrames:   p.dropped.Load(),
		CreatedAt:       p.createdAt,
	}
	if s := p.current.Load(); s != nil {
		sum.State = s.State().String()
		sum.Voice = s.Voice
	}
	return sum
}

func (p *Pump) handleFrame(ctx context.Context, raw []byte) {
	msg, err := types.ParseClientMessage(raw)
	if err != nil {
		p.opts.Metrics.ObserveMessage("inbound", "invalid")
		p.emitError(err)
		return
	}

	switch m := msg.(type) {
	case types.ConnectMessage:
		p.opts.Metrics.ObserveMessage("inbound", string(types.TypeConnect))
		p.connect(ctx, m.Config)
	case types.AudioInputMessage:
		p.opts.Metrics.ObserveMessage("inbound", string(types.TypeAudioInput))
		p.audio(ctx, m)
	case types.DisconnectMessage:
		p.opts.Metrics.ObserveMessage("inbound", string(types.TypeDisconnect))
		if p.sess != nil {
			p.sess.Disconnect()
		}
	}
}

func (p *Pump) connect(ctx context.Context, c types.ConnectConfig) {
	cfg := session.Config{Model: p.opts.Model, Credential: c.APIKey}
	if err := session.ValidateConfig(cfg); err != nil {
		p.emitError(err)
		return
	}
	instruction, err := p.opts.Instructions.Render(Profile{UserName: c.UserName, Topic: c.Topic})
	if err != nil {
		p.emitError(fmt.Errorf("%w: system instruction: %v", errs.ErrInvalidRequest, err))
		return
	}
	m := p.opts.Voices.Resolve(c.VoiceName)
	cfg.Voice = m.Backend
	cfg.SystemInstruction = instruction

	if p.sess != nil && !p.sess.State().Terminal() {
		p.opts.Logger.Printf("relay %s: replacing session %s", p.id, p.sess.ID)
		p.sess.Discard()
	}

	p.seq++
	s := session.New(fmt.Sprintf("%s/%d", p.id, p.seq), session.Options{
		Dialer: p.opts.Dialer,
		Emit:   p.emit,
		Post:   p.post,
		Logger: p.opts.Logger,
		OnTransition: func(_, to session.State) {
			p.opts.Metrics.ObserveTransition(to.String())
		},
		OnError: p.opts.OnError,
	})
	s.Voice = m.Name
	p.sess = s
	p.current.Store(s)

	if err := s.Connect(ctx, cfg); err != nil {
		p.emitError(err)
	}
}

func (p *Pump) audio(ctx context.Context, m types.AudioInputMessage) {
	if p.sess == nil {
		p.drop()
		return
	}
	ok, err := p.sess.SendAudio(ctx, m.Data, m.MimeType)
	if err != nil {
		p.emitError(err)
		return
	}
	if !ok {
		p.drop()
		return
	}
	p.forwarded.Add(1)
}

func (p *Pump) drop() {
	p.dropped.Add(1)
	p.opts.Metrics.ObserveDroppedFrame()
}

// post hands an event to Run, or reports false once Run has stopped.
func (p *Pump) post(ev session.Event) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.done:
		return false
	}
}

func (p *Pump) emit(env types.Envelope) {
	p.opts.Metrics.ObserveMessage("outbound", string(env.Type))
	if err := p.emitter.Emit(env); err != nil {
		p.opts.Logger.Printf("relay %s: write %s: %v", p.id, env.Type, err)
	}
}

func (p *Pump) emitError(err error) {
	p.emit(types.ErrorEnvelope(err.Error()))
}
