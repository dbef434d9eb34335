package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// providerChoices are offered by the wizard, most suitable first.
var providerChoices = []string{
	string(ProviderGoogle),
	string(ProviderOpenAI),
	string(ProviderOpenRouter),
	string(ProviderAnthropic),
	string(ProviderMiniMax),
	string(ProviderOllama),
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to shopsage! Let's configure the flow engine.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: providerChoices,
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   (fast and cheap)",
			"normal (balanced)",
			"max    (highest quality)",
		},
		CursorPos: 1,
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	defaults := DefaultConfig()

	rpmPrompt := promptui.Prompt{
		Label:    "Requests per minute (0 disables the limit)",
		Default:  strconv.Itoa(defaults.RequestsPerMinute),
		Validate: nonNegativeInt,
	}
	rpmStr, err := rpmPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("requests per minute: %w", err)
	}
	rpm, _ := strconv.Atoi(rpmStr)

	flowsPrompt := promptui.Prompt{
		Label:   "Flow file globs (comma-separated)",
		Default: strings.Join(DefaultFlowFiles, ","),
	}
	flowsStr, err := flowsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("flow files: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:    "HTTP port for shopsage serve",
		Default:  strconv.Itoa(defaults.Server.Port),
		Validate: nonNegativeInt,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := defaults
	cfg.Provider = provider
	cfg.Quality = quality
	cfg.Model = GetPreset(provider, quality).Model
	cfg.RequestsPerMinute = rpm
	cfg.FlowFiles = splitAndTrim(flowsStr)
	cfg.Server.Port = port

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before invoking flows.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
