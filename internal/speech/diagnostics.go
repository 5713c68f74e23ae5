package speech

import (
	"context"
	"time"

	"github.com/metalk/feelings/internal/domain/catalog"
)

// Diagnostics reports what the engine exposes and which voice the
// driver would pick per supported language. Useful for debugging a
// silent deployment without reading logs.
type Diagnostics struct {
	Supported   bool              `json:"supported"`
	Ready       bool              `json:"ready"`
	VoiceCount  int               `json:"voiceCount"`
	Voices      []Voice           `json:"voices,omitempty"`
	Selection   map[string]string `json:"selection,omitempty"`
	ProbeMillis int64             `json:"probeMillis"`
	Error       string            `json:"error,omitempty"`
}

// Diagnostics probes the engine and reports voice availability and the
// per-language selection outcome.
func (d *Driver) Diagnostics(ctx context.Context) Diagnostics {
	report := Diagnostics{Supported: d.engine != nil}
	if d.engine == nil {
		return report
	}

	start := time.Now()
	voices, err := d.awaitVoices(ctx)
	report.ProbeMillis = time.Since(start).Milliseconds()
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Ready = true
	report.VoiceCount = len(voices)
	report.Voices = voices
	report.Selection = make(map[string]string, len(catalog.Languages()))
	for _, lang := range catalog.Languages() {
		if v, err := d.selectVoice(ctx, lang); err == nil {
			report.Selection[string(lang)] = v.Name
		}
	}
	return report
}
