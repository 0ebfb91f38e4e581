package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// VOICEVOX defaults. The engine is a local application exposing an
// HTTP API; speaker 1 is Zundamon's normal style.
const (
	DefaultVoicevoxURL     = "http://localhost:50021"
	DefaultVoicevoxSpeaker = 1
)

// VoicevoxProvider implements Provider using a locally running
// VOICEVOX engine. Synthesis is a two-step API: an audio query built
// from the text, then a synthesis call that returns WAV bytes.
type VoicevoxProvider struct {
	baseURL string
	speaker int
	client  *http.Client
}

// NewVoicevoxProvider creates a new VOICEVOX provider
func NewVoicevoxProvider(config *Config) (Provider, error) {
	baseURL := config.VoicevoxURL
	if baseURL == "" {
		baseURL = DefaultVoicevoxURL
	}
	speaker := config.VoicevoxSpeaker
	if speaker == 0 {
		speaker = DefaultVoicevoxSpeaker
	}

	return &VoicevoxProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		speaker: speaker,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// GenerateAudio generates audio using the VOICEVOX engine
func (p *VoicevoxProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateJapaneseText(text); err != nil {
		return err
	}

	query, err := p.audioQuery(ctx, text)
	if err != nil {
		return err
	}

	wav, err := p.synthesize(ctx, query)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(outputFile))
	if ext == ".wav" {
		return os.WriteFile(outputFile, wav, 0644)
	}

	// The engine only emits WAV; other formats go through ffmpeg.
	return convertWAV(wav, outputFile)
}

// audioQuery asks the engine for the synthesis parameters of a text.
func (p *VoicevoxProvider) audioQuery(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(p.speaker))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/audio_query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("VOICEVOX not reachable at %s: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VOICEVOX audio query failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// synthesize turns an audio query into WAV bytes.
func (p *VoicevoxProvider) synthesize(ctx context.Context, query []byte) ([]byte, error) {
	params := url.Values{}
	params.Set("speaker", strconv.Itoa(p.speaker))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/synthesis?"+params.Encode(), bytes.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("VOICEVOX synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VOICEVOX synthesis failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Name returns the provider name
func (p *VoicevoxProvider) Name() string {
	return "voicevox"
}

// IsAvailable checks that a VOICEVOX engine is running
func (p *VoicevoxProvider) IsAvailable() error {
	req, err := http.NewRequest(http.MethodGet, p.baseURL+"/version", nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("VOICEVOX not running at %s (start the engine first): %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("VOICEVOX engine returned status %d", resp.StatusCode)
	}
	return nil
}

// convertWAV writes WAV bytes to outputFile's format via ffmpeg.
func convertWAV(wav []byte, outputFile string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outputFile), "voicevox-*.wav")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	cmd := exec.Command("ffmpeg", "-i", tmpPath,
		"-codec:a", "libmp3lame", "-qscale:a", "2", outputFile, "-y")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed (install ffmpeg or use --format wav): %w: %s",
			err, strings.TrimSpace(string(output)))
	}
	return nil
}
