package main

import (
	"os"
	"strings"

	"context-generator-be/internal/config"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/repository/memory"
	"context-generator-be/internal/service"
	"context-generator-be/pkg/aggregate"
	"context-generator-be/pkg/pdfparse"
	"context-generator-be/pkg/toolrunner"

	"github.com/fatih/color"
)

// doctor checks the local environment before the server is started.
func main() {
	cfg := config.Load()
	failed := false

	check := func(ok bool, pass, fail string) {
		if ok {
			color.Green("  ✔ %s", pass)
			return
		}
		color.Red("  ✘ %s", fail)
		failed = true
	}

	color.Cyan("🔎 Context generator environment check\n")

	parser := pdfparse.NewParser(pdfparse.Options{
		Command:  cfg.Tools.LlamaParseCommand,
		AuthFile: cfg.Tools.LlamaParseAuthFile,
	})
	aggregator := aggregate.NewAggregator(aggregate.Options{Command: cfg.Tools.FilesToPromptCommand})

	color.Yellow("\n[1] External tools")
	for _, name := range []string{parser.Command(), aggregator.Command()} {
		status := toolrunner.Check(name)
		check(status.Found, name+" → "+status.Path, name+" not found in PATH")
	}

	color.Yellow("\n[2] Credentials")
	authErr := parser.CheckAuth()
	check(authErr == nil, "llama-parse auth file "+parser.AuthFile(), errString(authErr))
	check(strings.TrimSpace(cfg.Keys.GoogleGemini) != "",
		"GOOGLE_GEMINI_API_KEY is set (model "+cfg.Ai.PersonaModel+")",
		"GOOGLE_GEMINI_API_KEY is not set; persona suggestions will fail")

	color.Yellow("\n[3] Default directories")
	settingsSvc := service.NewSettingsService(memory.NewSessionRepository(cfg.App.SessionTTL), cfg.Paths, logger.NewNopLogger())
	settings := settingsSvc.Current("doctor")
	dirErr := settingsSvc.Validate(settings)
	check(dirErr == nil, "PDF input "+settings.PdfInputDir, errString(dirErr))
	if dirErr == nil {
		check(true, "TXT input "+settings.TxtInputDir, "")
		check(true, "Output "+settings.OutputPath(), "")
	}

	if failed {
		color.Red("\nSome checks failed.")
		os.Exit(1)
	}
	color.Green("\nAll checks passed.")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
