//go:build !darwin && !linux

package tts

func newPlatformLocal() LocalSynthesizer { return unavailable{} }
