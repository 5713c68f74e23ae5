package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/mattn/go-shellwords"
)

// ExecEngine shells out to an external synthesizer binary. The voices
// command prints one JSON voice per line; the speak command reads a
// JSON request on stdin and exits zero when playback completes.
type ExecEngine struct {
	voicesCmd []string
	speakCmd  []string
}

type execSpeakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Lang  string `json:"lang"`
}

// NewExecEngine parses the two command lines with shell quoting rules.
func NewExecEngine(voicesCommand, speakCommand string) (*ExecEngine, error) {
	parser := shellwords.NewParser()

	voices, err := parser.Parse(voicesCommand)
	if err != nil {
		return nil, fmt.Errorf("parse voices command: %w", err)
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("voices command empty")
	}

	speak, err := parser.Parse(speakCommand)
	if err != nil {
		return nil, fmt.Errorf("parse speak command: %w", err)
	}
	if len(speak) == 0 {
		return nil, fmt.Errorf("speak command empty")
	}

	return &ExecEngine{voicesCmd: voices, speakCmd: speak}, nil
}

// Voices runs the voices command and parses its line-delimited JSON
// output. An engine still warming up may legitimately print nothing.
func (e *ExecEngine) Voices(ctx context.Context) ([]Voice, error) {
	cmd := exec.CommandContext(ctx, e.voicesCmd[0], e.voicesCmd[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v Voice
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parse voice line: %w", err)
		}
		voices = append(voices, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read voices output: %w", err)
	}
	return voices, nil
}

// Speak runs the speak command, writing the utterance request to its
// stdin, and blocks until the process exits.
func (e *ExecEngine) Speak(ctx context.Context, text string, voice Voice) error {
	payload, err := json.Marshal(execSpeakRequest{
		Text:  text,
		Voice: voice.ID,
		Lang:  voice.Lang,
	})
	if err != nil {
		return fmt.Errorf("marshal speak request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.speakCmd[0], e.speakCmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}
