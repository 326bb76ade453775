package tui

import (
	"errors"
	"strings"

	"github.com/blackcoderx/brunomigrate/pkg/config"
	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted by user")

// RunSetupWizard asks for the values written to .env by "brunomigrate init".
// cfg supplies the defaults and receives the answers.
func RunSetupWizard(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Postman API key").
				Description("Generate one under Settings > API keys in Postman.").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("an API key is required")
					}
					return nil
				}).
				Value(&cfg.APIKey),
			huh.NewInput().
				Title("Postman API URL").
				Value(&cfg.APIURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Value(&cfg.OutputDir),
			huh.NewInput().
				Title("Folder for exported Postman files").
				Value(&cfg.PostmanFolder),
			huh.NewInput().
				Title("Folder for converted Bruno files").
				Value(&cfg.BrunoFolder),
			huh.NewInput().
				Title("Folder for generated Bruno projects").
				Value(&cfg.BrunoProjectsFolder),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Skip resources that were already exported?").
				Value(&cfg.SkipAlreadyExported),
			huh.NewInput().
				Title("bru command").
				Description("Used by the import stage, e.g. \"bru\" or \"npx bru\".").
				Value(&cfg.BruCommand),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, ErrAborted
	}
	return ok, err
}
