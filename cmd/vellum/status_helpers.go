package main

import (
	"fmt"
	"strings"

	"vellum/internal/config"
	"vellum/internal/daemonctl"
	"vellum/internal/ipc"
	"vellum/internal/preflight"
)

func systemStatusLines(snapshot *daemonctl.StatusSnapshot, cfg *config.Config, colorize bool) []string {
	lines := make([]string, 0, 5)
	lines = append(lines, daemonStatusLine(snapshot.Status, colorize))
	lines = append(lines, templateStatusLine(snapshot.Templates, colorize))
	lines = append(lines, inboxStatusLine(snapshot.Inbox, colorize))
	lines = append(lines, notificationsStatusLine(cfg, colorize))
	if snapshot.Status != nil && strings.TrimSpace(snapshot.Status.LastError) != "" {
		lines = append(lines, renderStatusLine("Last Error", statusError, snapshot.Status.LastError, colorize))
	}
	return lines
}

func daemonStatusLine(status *ipc.StatusResponse, colorize bool) string {
	if status == nil || !status.Running {
		return renderStatusLine("Daemon", statusInfo, "Not running (run `vellum start`)", colorize)
	}
	detail := "Running"
	if status.PID > 0 {
		detail = fmt.Sprintf("Running (pid %d)", status.PID)
	}
	return renderStatusLine("Daemon", statusOK, detail, colorize)
}

func templateStatusLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine("Templates", statusOK, result.Detail, colorize)
	}
	return renderStatusLine("Templates", statusWarn, result.Detail, colorize)
}

func inboxStatusLine(probe preflight.InboxProbe, colorize bool) string {
	if probe.Pending > 0 {
		return renderStatusLine("Inbox", statusOK, probe.Detail(), colorize)
	}
	return renderStatusLine("Inbox", statusInfo, probe.Detail(), colorize)
}

func notificationsStatusLine(cfg *config.Config, colorize bool) string {
	if cfg == nil {
		return renderStatusLine("Notifications", statusInfo, "Unknown", colorize)
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return renderStatusLine("Notifications", statusInfo, "Not configured", colorize)
	}
	return renderStatusLine("Notifications", statusOK, fmt.Sprintf("Configured (topic: %s)", topic), colorize)
}

func preflightStatusLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, statusError, result.Detail, colorize)
}

func stageHealthLines(snapshot *daemonctl.StatusSnapshot, colorize bool) []string {
	status := snapshot.Status
	if status == nil || !status.Running || len(status.StageHealth) == 0 {
		return nil
	}
	lines := make([]string, 0, len(status.StageHealth))
	for _, stage := range status.StageHealth {
		kind := statusOK
		if !stage.Ready {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(formatStatusLabel(stage.Name), kind, stage.Detail, colorize))
	}
	return lines
}
