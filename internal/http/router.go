package http

import (
	"github.com/steveyiyo/voicerelay/internal/config"
	"github.com/steveyiyo/voicerelay/internal/core/gemini"
	"github.com/steveyiyo/voicerelay/internal/core/relay"
	"github.com/steveyiyo/voicerelay/internal/core/session"
	"github.com/steveyiyo/voicerelay/internal/core/tts"
	"github.com/steveyiyo/voicerelay/internal/core/voice"
	"github.com/steveyiyo/voicerelay/internal/http/handlers"
	"github.com/steveyiyo/voicerelay/internal/logging"
	"github.com/steveyiyo/voicerelay/internal/observability"
	"github.com/steveyiyo/voicerelay/pkg/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Deps carries everything the router wires into handlers. Tests swap the
// Gemini-backed pieces for stubs.
type Deps struct {
	Hub       *ws.Hub
	Voices    *voice.Table
	Dialer    session.Dialer
	Generator gemini.TextGenerator
	Speech    handlers.Synthesizer
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Reporter  *observability.Reporter
}

// NewDeps builds the production dependency set from cfg.
func NewDeps(cfg config.Config, reporter *observability.Reporter) Deps {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := observability.NewMetrics(cfg.MetricsNamespace, reg)

	voices := voice.NewTable(cfg.DefaultVoice)
	resolver := tts.NewResolver(gemini.NewSpeechProvider(cfg.TTSModel), tts.NewLocal(), voices)
	resolver.PrimaryTimeout = cfg.TTSPrimaryTimeout
	resolver.Logger = logging.New("[tts] ")
	resolver.Recorder = m

	return Deps{
		Hub:       ws.NewHub(),
		Voices:    voices,
		Dialer:    gemini.NewLiveDialer(cfg.LiveModel),
		Generator: gemini.NewGenerator(cfg.DefaultModel),
		Speech:    resolver,
		Metrics:   m,
		Gatherer:  reg,
		Reporter:  reporter,
	}
}

func NewRouter(cfg config.Config, d Deps) (*gin.Engine, error) {
	instructions, err := relay.ParseInstructions(cfg.InstructionTemplate)
	if err != nil {
		return nil, err
	}
	if d.Hub == nil {
		d.Hub = ws.NewHub()
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	gh := handlers.NewGenerateHandler(d.Generator)
	th := handlers.NewTTSHandler(d.Speech, cfg.DefaultVoice)
	sh := handlers.NewSessionsHandler(d.Hub)
	wsh := handlers.NewStreamHandler(d.Hub, relay.Options{
		Dialer:       d.Dialer,
		Instructions: instructions,
		Voices:       d.Voices,
		Model:        cfg.LiveModel,
		Metrics:      d.Metrics,
		Logger:       logging.New("[relay] "),
		OnError:      d.Reporter.Capture,
	}, d.Metrics)

	r.GET("/", handlers.Health)
	api := r.Group("/api")
	api.GET("/health", handlers.Health)
	api.POST("/generate", gh.Generate)
	api.POST("/generate-tts", th.Synthesize)
	api.GET("/sessions", sh.List)
	api.GET("/sessions/:id", sh.Get)
	r.GET(cfg.WSPath, wsh.WS)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(observability.Handler(d.Gatherer)))
	}
	return r, nil
}
