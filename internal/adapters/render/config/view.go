package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	appconfig "github.com/bnema/sms-rce/internal/config"
)

const keyWidth = 22

type field struct {
	key   string
	value string
}

func renderView(cfg appconfig.Config, s styles) string {
	source := "environment"
	if cfg.File != "" {
		source = cfg.File + " + environment"
	}

	lines := []string{
		s.title.Render("SMS RCE Configuration"),
		s.header.Render("source: " + source),
	}

	lines = append(lines,
		renderSection(s, "Server", []field{
			{"url", cfg.Server.URL},
			{"listen", cfg.ListenAddr()},
			{"redirect url", cfg.RedirectURL()},
		}),
		renderSection(s, "Vonage", []field{
			{"auth", authMode(cfg)},
			{"api key", cfg.Vonage.APIKey},
			{"api secret", cfg.Vonage.APISecret},
			{"application id", cfg.Vonage.ApplicationID},
			{"private key", cfg.Vonage.PrivateKey},
			{"api base url", cfg.API.BaseURL},
			{"network api base url", cfg.API.NetworkBaseURL},
			{"request timeout", formatDuration(cfg.API.Timeout)},
		}),
		renderSection(s, "Allow-list", []field{
			{"numbers", strings.Join(cfg.AllowList.Numbers, ", ")},
			{"file", cfg.AllowList.File},
		}),
		renderSection(s, "Verification", []field{
			{"brand", cfg.Verify.Brand},
			{"cooldown", formatDuration(cfg.Verify.Cooldown)},
			{"silent auth sandbox", strconv.FormatBool(cfg.Verify.SilentAuthSandbox)},
			{"fraud check timeout", formatDuration(cfg.Verify.FraudCheckTimeout)},
		}),
		renderSection(s, "Messages", []field{
			{"chunk size", strconv.Itoa(cfg.Messages.ChunkSize)},
			{"url", cfg.Messages.URL},
			{"sandbox url", cfg.Messages.SandboxURL},
			{"sandbox channels", strings.Join(cfg.Messages.SandboxChannels, ", ")},
		}),
		renderSection(s, "Execution", []field{
			{"shell", cfg.Exec.Shell},
			{"timeout", formatDuration(cfg.Exec.Timeout)},
			{"max output bytes", formatLimit(cfg.Exec.MaxOutputBytes)},
			{"lock shards", strconv.Itoa(cfg.Locks.Shards)},
		}),
		renderSection(s, "State", []field{
			{"verified senders file", verifiedStorage(cfg.State.VerifiedFile)},
		}),
		renderSection(s, "Logging", []field{
			{"level", cfg.Log.Level},
			{"format", cfg.Log.Format},
		}),
	)

	if warnings := warningsFor(cfg); len(warnings) > 0 {
		rendered := make([]string, 0, len(warnings))
		for _, warning := range warnings {
			rendered = append(rendered, s.warning.Render("! "+warning))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rendered...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSection(s styles, title string, fields []field) string {
	parts := []string{s.heading.Render(title)}
	for _, f := range fields {
		value := s.value.Render(f.value)
		if f.value == "" {
			value = s.empty.Render("not set")
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(f.key), value))
	}
	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func verifiedStorage(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}

func authMode(cfg appconfig.Config) string {
	switch {
	case cfg.HasApplication():
		return "application jwt"
	case cfg.UsableAPIKey():
		return "api key"
	default:
		return ""
	}
}

func warningsFor(cfg appconfig.Config) []string {
	var warnings []string
	if cfg.Exec.Timeout == 0 {
		warnings = append(warnings, "commands run without a timeout")
	}
	if cfg.Exec.MaxOutputBytes == 0 {
		warnings = append(warnings, "command output is not capped")
	}
	if !cfg.HasApplication() {
		warnings = append(warnings, "no application credentials: SIM swap checks are skipped")
	}
	if err := cfg.Validate(); err != nil {
		warnings = append(warnings, strings.Split(err.Error(), "\n")...)
	}
	return warnings
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "disabled"
	}
	return d.String()
}

func formatLimit(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}
