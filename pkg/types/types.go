package types

import "time"

type GenerateReq struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	APIKey string `json:"apiKey"`
}

type GenerateResp struct {
	Text string `json:"text"`
}

type TTSReq struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	APIKey string `json:"apiKey"`
}

type TTSResp struct {
	AudioBase64   string `json:"audioBase64"`
	AudioMimeType string `json:"audioMimeType,omitempty"`
}

type ErrorResp struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SessionSummary struct {
	ConnectionID    string    `json:"connection_id"`
	State           string    `json:"state"`
	Voice           string    `json:"voice,omitempty"`
	ForwardedFrames int64     `json:"forwarded_frames"`
	DroppedFrames   int64     `json:"dropped_frames"`
	CreatedAt       time.Time `json:"created_at"`
}
