//go:build linux

package tts

// espeak has no named voices matching the macOS set, so map to variants.
var espeakVariants = map[string]string{
	"Daniel":   "en-gb+m3",
	"Alex":     "en-us+m1",
	"Samantha": "en-us+f3",
	"Fred":     "en-us+m4",
	"Karen":    "en-us+f2",
	"Victoria": "en-us+f4",
	"Tom":      "en-us+m2",
	"Moira":    "en-gb+f1",
}

func newPlatformLocal() LocalSynthesizer {
	return &commandSynth{
		bin:      "espeak-ng,espeak",
		mimeType: "audio/wav",
		args: func(text, voice, out string) []string {
			return []string{"-v", voice, "-w", out, "--", text}
		},
		voiceName: func(voice string) string {
			if v, ok := espeakVariants[voice]; ok {
				return v
			}
			return "en-us"
		},
	}
}
