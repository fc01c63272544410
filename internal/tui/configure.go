package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/lyricsync/internal/config"
	lang "github.com/leonardotrapani/lyricsync/internal/language"
	"github.com/leonardotrapani/lyricsync/internal/provider"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionTranscription ConfigSection = "transcription"
	SectionSegmentation  ConfigSection = "segmentation"
	SectionIsolation     ConfigSection = "isolation"
	SectionLLM           ConfigSection = "llm"
	SectionKeywords      ConfigSection = "keywords"
	SectionServer        ConfigSection = "server"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the menu based editor on a copy of existing. A nil config
// starts from the defaults.
func Run(existing *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existing != nil {
		cfg = existing.Clone()
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				showInvalid(err)
				continue
			}
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionTranscription:
			_ = editTranscription(cfg)
		case SectionSegmentation:
			_ = editSegmentation(cfg)
		case SectionIsolation:
			_ = editIsolation(cfg)
		case SectionLLM:
			_ = editLLM(cfg)
		case SectionKeywords:
			_ = editKeywords(cfg)
		case SectionServer:
			_ = editServer(cfg)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatTranscriptionLabel(cfg), SectionTranscription),
		huh.NewOption(formatSegmentationLabel(cfg), SectionSegmentation),
		huh.NewOption(formatIsolationLabel(cfg), SectionIsolation),
		huh.NewOption(formatLLMLabel(cfg), SectionLLM),
		huh.NewOption(formatKeywordsLabel(cfg), SectionKeywords),
		huh.NewOption(formatServerLabel(cfg), SectionServer),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editTranscription(cfg *config.Config) error {
	selected := cfg.Transcription.Provider
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Provider").
				Description(fmt.Sprintf("Currently: %s/%s", cfg.Transcription.Provider, cfg.Transcription.Model)).
				Options(transcriptionProviderOptions(cfg)...).
				Value(&selected),
		),
	).WithTheme(getTheme())
	if err := providerForm.Run(); err != nil {
		return err
	}

	model := cfg.Transcription.Model
	options := modelOptions(selected, provider.Transcription)
	if selected != cfg.Transcription.Provider && len(options) > 0 {
		model = options[0].Value
	}
	language := lang.FromCode(cfg.Transcription.Language).Code

	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Model").
				Options(options...).
				Value(&model),
			huh.NewSelect[string]().
				Title("Language").
				Description("Language the vocals are sung in").
				Options(languageOptions()...).
				Height(10).
				Value(&language),
		),
	).WithTheme(getTheme())
	if err := modelForm.Run(); err != nil {
		return err
	}

	if err := ensureAPIKey(cfg, selected); err != nil {
		return err
	}

	cfg.Transcription.Provider = selected
	cfg.Transcription.Model = model
	cfg.Transcription.Language = language
	return nil
}

// ensureAPIKey asks for a key when the provider needs one and none is stored
func ensureAPIKey(cfg *config.Config, configProvider string) error {
	base := provider.BaseProviderName(configProvider)
	p := provider.GetProvider(base)
	if p == nil || !p.RequiresAPIKey() {
		return nil
	}
	if pc, ok := cfg.Providers[base]; ok && pc.APIKey != "" {
		return nil
	}

	desc := "Stored in the config file"
	if env := provider.EnvVarForProvider(base); env != "" {
		desc = fmt.Sprintf("Leave empty to use $%s", env)
	}

	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", getProviderDisplayName(base))).
				Description(desc).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "" || p.ValidateAPIKey(s) {
						return nil
					}
					return fmt.Errorf("that does not look like a %s key", base)
				}).
				Value(&key),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if key = strings.TrimSpace(key); key != "" {
		if cfg.Providers == nil {
			cfg.Providers = map[string]config.ProviderConfig{}
		}
		cfg.Providers[base] = config.ProviderConfig{APIKey: key}
	}
	return nil
}

func editSegmentation(cfg *config.Config) error {
	window := strconv.Itoa(cfg.Transcription.Window)
	retries := strconv.Itoa(cfg.Transcription.Retries)
	policy := cfg.Transcription.Policy

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Segment Window").
				Description("Seconds of audio per lyric line").
				Validate(validatePositiveInt).
				Value(&window),
			huh.NewSelect[string]().
				Title("Failed Segments").
				Options(policyOptions()...).
				Value(&policy),
			huh.NewInput().
				Title("Retries").
				Description("Extra attempts for a segment the service failed on").
				Validate(validateNonNegativeInt).
				Value(&retries),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Window, _ = strconv.Atoi(strings.TrimSpace(window))
	cfg.Transcription.Retries, _ = strconv.Atoi(strings.TrimSpace(retries))
	cfg.Transcription.Policy = policy
	return nil
}

func editIsolation(cfg *config.Config) error {
	backend := cfg.Isolation.Backend
	backendForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Vocal Isolation").
				Options(isolationOptions()...).
				Value(&backend),
		),
	).WithTheme(getTheme())
	if err := backendForm.Run(); err != nil {
		return err
	}

	model := cfg.Isolation.Model
	if backend != cfg.Isolation.Backend || model == "" {
		model = defaultIsolationModel(backend)
	}
	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Separation Model").
				Value(&model),
		),
	).WithTheme(getTheme())
	if err := modelForm.Run(); err != nil {
		return err
	}

	cfg.Isolation.Backend = backend
	cfg.Isolation.Model = strings.TrimSpace(model)
	return nil
}

func editLLM(cfg *config.Config) error {
	enabled := cfg.LLM.Enabled
	toggle := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clean up lyric lines with an LLM?").
				Description("Each transcribed line is sent to the model for punctuation and spelling fixes").
				Value(&enabled),
		),
	).WithTheme(getTheme())
	if err := toggle.Run(); err != nil {
		return err
	}
	if !enabled {
		cfg.LLM.Enabled = false
		return nil
	}

	selected := cfg.LLM.Provider
	if selected == "" {
		selected = provider.ProviderOpenAI
	}
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM Provider").
				Options(llmProviderOptions()...).
				Value(&selected),
		),
	).WithTheme(getTheme())
	if err := providerForm.Run(); err != nil {
		return err
	}

	model := cfg.LLM.Model
	options := modelOptions(selected, provider.LLM)
	if (selected != cfg.LLM.Provider || model == "") && len(options) > 0 {
		model = options[0].Value
	}
	prompt := cfg.LLM.CustomPrompt

	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM Model").
				Options(options...).
				Value(&model),
			huh.NewText().
				Title("Custom Prompt").
				Description("Optional extra instructions, e.g. keep slang as sung").
				Value(&prompt),
		),
	).WithTheme(getTheme())
	if err := modelForm.Run(); err != nil {
		return err
	}

	if err := ensureAPIKey(cfg, selected); err != nil {
		return err
	}

	cfg.LLM.Enabled = true
	cfg.LLM.Provider = selected
	cfg.LLM.Model = model
	cfg.LLM.CustomPrompt = strings.TrimSpace(prompt)
	return nil
}

func editKeywords(cfg *config.Config) error {
	keywords := strings.Join(cfg.Keywords, ", ")
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keywords").
				Description("Comma separated names and words the recognizer should expect").
				Value(&keywords),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Keywords = parseKeywords(keywords)
	return nil
}

func editServer(cfg *config.Config) error {
	address := cfg.Server.Address
	concurrent := strconv.Itoa(cfg.Server.MaxConcurrent)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Value(&address),
			huh.NewInput().
				Title("Concurrent Requests").
				Description("Songs processed at the same time, the rest queue").
				Validate(validatePositiveInt).
				Value(&concurrent),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.Address = strings.TrimSpace(address)
	cfg.Server.MaxConcurrent, _ = strconv.Atoi(strings.TrimSpace(concurrent))
	return nil
}

func showInvalid(err error) {
	var back bool
	huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Configuration is not valid yet").
				Description(err.Error()),
			huh.NewConfirm().
				Affirmative("Back to menu").
				Negative("").
				Value(&back),
		),
	).WithTheme(getTheme()).Run()
}

func showSummary(cfg *config.Config) (bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcription: %s/%s\n", cfg.Transcription.Provider, cfg.Transcription.Model)
	for _, name := range getConfiguredProviders(cfg) {
		fmt.Fprintf(&b, "  %s key: %s\n", name, maskAPIKey(cfg.Providers[name].APIKey))
	}
	fmt.Fprintf(&b, "Window: %ds, policy %s, retries %d\n", cfg.Transcription.Window, cfg.Transcription.Policy, cfg.Transcription.Retries)
	fmt.Fprintf(&b, "Isolation: %s (%s)\n", cfg.Isolation.Backend, cfg.Isolation.Model)
	if cfg.LLM.Enabled {
		fmt.Fprintf(&b, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(&b, "Server: %s", cfg.Server.Address)

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				Description(b.String()),
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Keep editing").
				Value(&confirmed),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
