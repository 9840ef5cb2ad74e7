package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/positions/internal/config"
)

// Profile flags
var (
	profileURL        string
	profileUser       string
	profileForm       string
	profileLocale     string
	profilePageSize   int
	profileDebounce   int
	profileValidation string
	profileTimeout    int
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configShowCmd)

	f := configAddCmd.Flags()
	f.StringVar(&profileURL, "url", "", "Backend base URL, e.g. http://erp.local:8080")
	f.StringVar(&profileUser, "user", "", "Backend user name")
	f.StringVar(&profileForm, "form", "", "Document id")
	f.StringVar(&profileLocale, "locale", "", "Language (en, pl)")
	f.IntVar(&profilePageSize, "page-size", 0, "Rows per page")
	f.IntVar(&profileDebounce, "lookup-debounce", 0, "Delay before a lookup search, in milliseconds")
	f.StringVar(&profileValidation, "validation", "", "Quantity validation (compatible, strict)")
	f.IntVar(&profileTimeout, "timeout", 0, "HTTP request timeout in seconds")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage connection profiles",
	Long: `Manage the connection profiles stored in the configuration file.

Passwords are never stored; they come from POSITIONS_PASSWORD or a prompt.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file with a local profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s", path)
		}
		if err := config.CreateDefaultConfig(); err != nil {
			return err
		}
		fmt.Printf("✓ Created %s\n", path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if len(reg.Profiles) == 0 {
			fmt.Println("No profiles configured. Use 'positions config add <name> --url <url>'.")
			return nil
		}
		for _, name := range reg.ProfileNames() {
			marker := " "
			if name == reg.CurrentProfile {
				marker = "*"
			}
			p := reg.GetProfile(name)
			fmt.Printf("%s %-16s %s", marker, name, p.BaseURL)
			if p.FormID != "" {
				fmt.Printf(" (document %s)", p.FormID)
			}
			fmt.Println()
		}
		return nil
	},
}

var configAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Example: `  positions config add warehouse --url http://erp.local:8080 --user clerk --form 42
  positions config add warehouse --validation strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		name := args[0]
		p := reg.EnsureProfile(name)
		if profileURL == "" && p.BaseURL == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("--url is required for a new profile")
			}
			if profileURL, err = readLine("Backend URL: "); err != nil {
				return err
			}
		}

		setIf(&p.BaseURL, profileURL)
		setIf(&p.Username, profileUser)
		setIf(&p.FormID, profileForm)
		setIf(&p.Locale, profileLocale)
		setIf(&p.Validation, profileValidation)
		if profilePageSize > 0 {
			p.PageSize = profilePageSize
		}
		if profileDebounce > 0 {
			p.LookupDebounceMS = profileDebounce
		}
		if profileTimeout > 0 {
			p.TimeoutSeconds = profileTimeout
		}

		s, err := config.Resolve(reg, config.Overrides{Profile: name})
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return err
		}

		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Saved profile %s\n", name)
		return nil
	},
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if reg.GetProfile(args[0]) == nil {
			return fmt.Errorf("profile %q not found", args[0])
		}
		reg.CurrentProfile = args[0]
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Using profile %s\n", args[0])
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if !reg.RemoveProfile(args[0]) {
			return fmt.Errorf("profile %q not found", args[0])
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Removed profile %s\n", args[0])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the settings commands would run with",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.LoadEnv(config.EnvFiles); err != nil {
			return err
		}
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		overrides, err := config.ParseOverrides()
		if err != nil {
			return err
		}
		if profileName != "" {
			overrides.Profile = profileName
		}
		s, err := config.Resolve(reg, overrides)
		if err != nil {
			return err
		}

		path, _ := config.GetConfigPath()
		fmt.Printf("Config file:     %s\n", path)
		fmt.Printf("Profile:         %s\n", orNone(s.Profile))
		fmt.Printf("Base URL:        %s\n", orNone(s.BaseURL))
		fmt.Printf("User:            %s\n", orNone(s.Username))
		fmt.Printf("Document:        %s\n", orNone(s.FormID))
		fmt.Printf("Locale:          %s\n", s.Locale)
		fmt.Printf("Page size:       %d\n", s.PageSize)
		fmt.Printf("Lookup debounce: %s\n", s.LookupDebounce)
		fmt.Printf("Validation:      %s\n", s.Validation)
		fmt.Printf("Timeout:         %s\n", s.Timeout)
		fmt.Printf("Change feed:     %v\n", s.ChangeFeed)

		if err := s.Validate(); err != nil {
			fmt.Printf("\n✗ %v\n", err)
		}
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
