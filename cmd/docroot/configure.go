package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/docroot/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure [file]",
	Short: "Generate a config file interactively",
	Long: `Generate a docroot config file interactively.

You will be prompted for:
  - Document root directory
  - Bind address and port
  - Environment (dev or prod) and log level

The file defaults to ./config.yaml; an existing file is only replaced
after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(_ *cobra.Command, args []string) error {
	configPath := "config.yaml"
	if len(args) == 1 {
		configPath = args[0]
	}

	if _, err := os.Stat(configPath); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("File '%s' already exists. Overwrite it", configPath),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	// Start from the defaults and fill in the prompted values
	cfg, err := config.Load(nil, nil)
	if err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	rootPrompt := promptui.Prompt{
		Label:   "Document root",
		Default: cfg.Root.Path,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("document root is required")
			}
			info, statErr := os.Stat(input)
			if statErr != nil {
				return fmt.Errorf("cannot stat %s: %w", input, statErr)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", input)
			}
			return nil
		},
	}
	rootPath, err := rootPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	addrPrompt := promptui.Prompt{
		Label:   "Bind address (empty for all interfaces)",
		Default: cfg.Server.Addr,
	}
	addr, err := addrPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(input string) error {
			n, convErr := strconv.Atoi(input)
			if convErr != nil {
				return errors.New("port must be a number")
			}
			if n < 0 || n > 65535 {
				return errors.New("port must be between 0 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parse port: %w", err)
	}

	envSelect := promptui.Select{
		Label: "Environment",
		Items: []string{"dev", "prod"},
	}
	_, env, err := envSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	levelSelect := promptui.Select{
		Label: "Log level",
		Items: []string{"debug", "info", "warn", "error"},
	}
	_, level, err := levelSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	cfg.Root.Path = rootPath
	cfg.Server.Addr = addr
	cfg.Server.Port = port
	cfg.Env = env
	cfg.Log.Level = level

	if err := config.WriteFile(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Wrote %s\n", configPath)
	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return fmt.Errorf("prompt: %w", err)
}
