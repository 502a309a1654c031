package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"brewlink/internal/logger"
	"brewlink/internal/models"
)

const commandTimeout = 5 * time.Second

// knownCommands are the zero-argument operations the machine accepts.
var knownCommands = map[string]bool{
	"start":    true,
	"stop":     true,
	"tare":     true,
	"flush":    true,
	"steam":    true,
	"hotwater": true,
}

// CommandDispatcher relays named commands to the machine's HTTP API. Every
// outcome, including transport failure, is reported as a CommandResult; the
// UI layer never sees a raised error from here.
type CommandDispatcher struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func NewCommandDispatcher(baseURL string, log *logger.Logger) *CommandDispatcher {
	return &CommandDispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: commandTimeout},
		log:     log,
	}
}

// Dispatch fires one named command and reports its outcome.
func (d *CommandDispatcher) Dispatch(ctx context.Context, name string) models.CommandResult {
	name = strings.ToLower(strings.TrimSpace(name))
	if !knownCommands[name] {
		return models.CommandResult{Success: false, Message: "unknown command: " + name}
	}
	if d.baseURL == "" {
		return models.CommandResult{Success: false, Message: "machine command endpoint not configured"}
	}

	url := d.baseURL + "/api/command/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return models.CommandResult{Success: false, Message: err.Error()}
	}

	resp, err := d.http.Do(req)
	if err != nil {
		if d.log != nil {
			d.log.Errorw("command_dispatch_failed", "command", name, "err", err)
		}
		return models.CommandResult{Success: false, Message: "machine unreachable"}
	}
	defer func() { _ = resp.Body.Close() }()

	var result models.CommandResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Fall back to the HTTP status when the body isn't the expected shape.
		result = models.CommandResult{Success: resp.StatusCode < 300}
	}
	if resp.StatusCode >= 300 && result.Message == "" {
		result.Success = false
		result.Message = "machine returned " + resp.Status
	}
	if d.log != nil {
		d.log.Infow("command_dispatched", "command", name, "success", result.Success)
	}
	return result
}
