//go:build darwin

package tts

func newPlatformLocal() LocalSynthesizer {
	return &commandSynth{
		bin:      "say",
		mimeType: "audio/wav",
		args: func(text, voice, out string) []string {
			return []string{"-v", voice, "-o", out, "--file-format=WAVE", "--data-format=LEI16@24000", "--", text}
		},
	}
}
