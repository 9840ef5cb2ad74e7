package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/positions/internal/discovery"
	"github.com/muurk/positions/internal/lookup"
	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/tui"
)

// Row command flags
var (
	page        int
	pageSize    int
	sortField   string
	sortOrder   string
	filters     map[string]string
	assumeYes   bool
	scanTimeout int
)

func init() {
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(rowsCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(discoverCmd)

	rowsCmd.AddCommand(rowsListCmd)
	rowsCmd.AddCommand(rowsAddCmd)
	rowsCmd.AddCommand(rowsEditCmd)
	rowsCmd.AddCommand(rowsDeleteCmd)

	rowsListCmd.Flags().IntVar(&page, "page", 1, "Page number")
	rowsListCmd.Flags().IntVar(&pageSize, "rows", 0, "Rows per page (default: profile page size)")
	rowsListCmd.Flags().StringVar(&sortField, "sort", positions.FieldID, "Sort field")
	rowsListCmd.Flags().StringVar(&sortOrder, "order", "asc", "Sort order (asc, desc)")
	rowsListCmd.Flags().StringToStringVar(&filters, "filter", nil, "Filter rows by field=value (repeatable)")

	rowsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking")

	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

// gridCmd opens the terminal grid editor
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Open the grid editor",
	Long: `Open the terminal grid editor for one document.

The editor loads the grid configuration, the unit and pallet type
vocabularies and the first page of rows. Rows can be added, edited and
deleted; product, additional code, pallet and storage location fields
suggest matches while typing.`,
	Example: `  # Edit the document of the current profile
  positions grid
  # Or simply (grid is default):
  positions

  # Edit another document
  positions --form 42

  # Take the document from a page URL
  positions --context-url 'http://erp.local/page.html?context={"form.id":"42"}'`,
	RunE: runGrid,
}

func runGrid(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("the grid editor needs a terminal; use 'positions rows list' instead")
	}

	s, err := loadSettings(cmd.Context(), true)
	if err != nil {
		return err
	}
	client := s.NewClient()

	opts := tui.Options{
		Backend:        client,
		Endpoints:      client.Endpoints,
		Translator:     newTranslator(s),
		FormID:         s.FormID,
		Validation:     s.ValidationMode(),
		PageSize:       s.PageSize,
		LookupDebounce: s.LookupDebounce,
	}
	if s.ChangeFeed {
		opts.ChangeFeedURL = client.Endpoints.ChangeFeed()
		opts.ChangeFeedHeader = authHeader(s.Username, s.Password)
	}

	return tui.Run(cmd.Context(), opts)
}

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "List and change rows without the grid editor",
}

var rowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of the document's rows",
	Example: `  # First page
  positions rows list

  # Third page, 20 rows per page, largest quantities first
  positions rows list --page 3 --rows 20 --sort quantity --order desc

  # Only rows of one product
  positions rows list --filter product=PROD-100

  # JSON output for scripting
  positions rows list --format json`,
	Args: cobra.NoArgs,
	RunE: runRowsList,
}

func runRowsList(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Context(), true)
	if err != nil {
		return err
	}

	req := positions.DefaultPageRequest()
	req.Page = page
	req.Rows = s.PageSize
	if pageSize > 0 {
		req.Rows = pageSize
	}
	req.SortField = sortField
	req.SortOrder = sortOrder
	req.Filters = filters

	p, err := s.NewClient().ListRows(cmd.Context(), s.FormID, req)
	if err != nil {
		return fmt.Errorf("failed to list rows: %s", positions.UserMessage(err))
	}

	if outputFormat == "json" {
		return printJSON(p)
	}
	fmt.Print(p.FormatTable(nil))
	return nil
}

var rowsAddCmd = &cobra.Command{
	Use:   "add <field=value>...",
	Short: "Add a row to the document",
	Example: `  positions rows add product=PROD-100 quantity=5 unit=kg givenunit=1 type_of_pallet=1`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRowsAdd,
}

func runRowsAdd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Context(), true)
	if err != nil {
		return err
	}
	fields, err := parseAssignments(args)
	if err != nil {
		return err
	}

	pd := positions.NewAddPostData(s.FormID)
	for k, v := range fields {
		pd[k] = v
	}

	if err := newRowEditor(s).Add(cmd.Context(), pd); err != nil {
		return fmt.Errorf("add failed: %s", positions.UserMessage(err))
	}
	return nil
}

var rowsEditCmd = &cobra.Command{
	Use:   "edit <id> <field=value>...",
	Short: "Change fields of a row",
	Example: `  positions rows edit 17 quantity=12.5 pallet=P-0002`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runRowsEdit,
}

func runRowsEdit(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Context(), false)
	if err != nil {
		return err
	}
	fields, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	pd := positions.PostData{positions.FieldOper: positions.OperEdit, positions.FieldID: args[0]}
	for k, v := range fields {
		pd[k] = v
	}

	if err := newRowEditor(s).Edit(cmd.Context(), pd); err != nil {
		return fmt.Errorf("edit failed: %s", positions.UserMessage(err))
	}
	return nil
}

var rowsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd.Context(), false)
		if err != nil {
			return err
		}
		if !assumeYes && term.IsTerminal(int(os.Stdin.Fd())) {
			summary := ""
			if s.FormID != "" {
				summary = "Document " + s.FormID
			}
			if !tui.ConfirmDelete(os.Stdin, os.Stdout, tui.TerminalWidth(), args[0], summary) {
				return nil
			}
		}

		if err := newRowEditor(s).Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete failed: %s", positions.UserMessage(err))
		}
		fmt.Printf("✓ Position %s deleted\n", args[0])
		return nil
	},
}

var matchStyle = lipgloss.NewStyle().Bold(true)

var lookupCmd = &cobra.Command{
	Use:   "lookup <field> <query>",
	Short: "Search reference data the way a lookup field does",
	Long: `Search the reference data behind a lookup field.

Fields: product, additional_code, pallet, storage_location. The query is
split on spaces; every word must match.`,
	Example: `  positions lookup product prod 1
  positions lookup pallet P-00`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := lookup.ParseKind(args[0])
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")

		s, err := loadSettings(cmd.Context(), false)
		if err != nil {
			return err
		}
		client := s.NewClient()

		candidates, err := client.Search(cmd.Context(), kind.Endpoint(client.Endpoints), query)
		if err != nil {
			return fmt.Errorf("lookup failed: %s", positions.UserMessage(err))
		}

		if outputFormat == "json" {
			return printJSON(candidates)
		}
		if !isTerminal() {
			fmt.Print(positions.FormatCandidates(candidates))
			return nil
		}
		if len(candidates) == 0 {
			fmt.Println("(no matches)")
		}
		for _, c := range candidates {
			label := lookup.Render(c.Label(), query, func(m string) string { return matchStyle.Render(m) })
			fmt.Printf("%-8s %s\n", c.ID, label)
		}
		return nil
	},
}

var unitCmd = &cobra.Command{
	Use:   "unit <product>",
	Short: "Show the unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd.Context(), false)
		if err != nil {
			return err
		}
		unit, err := s.NewClient().ProductUnit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("unit lookup failed: %s", positions.UserMessage(err))
		}
		fmt.Println(unit)
		return nil
	},
}

var optionsCmd = &cobra.Command{
	Use:       "options <units|pallets>",
	Short:     "Show a select vocabulary",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"units", "pallets"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd.Context(), false)
		if err != nil {
			return err
		}
		client := s.NewClient()

		var options []positions.Option
		switch args[0] {
		case "units":
			options, err = client.Units(cmd.Context())
		case "pallets":
			options, err = client.PalletTypes(cmd.Context())
		default:
			return fmt.Errorf("unknown vocabulary %q (valid: units, pallets)", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %s", args[0], positions.UserMessage(err))
		}

		if outputFormat == "json" {
			return printJSON(options)
		}
		fmt.Print(positions.FormatOptions(options))
		return nil
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find positions backends on the local network",
	Long: `Find positions backends using mDNS/DNS-SD discovery.

Backends advertise the _positions._tcp service with their integration path,
context root and version in TXT records.`,
	Example: `  # Scan for 5 seconds (default)
  positions discover

  # Longer scan for busy networks
  positions discover --timeout 15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Scanning for positions backends (timeout: %ds)...\n\n", scanTimeout)

		scanner := discovery.NewScanner()
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
		backends, err := scanner.Scan(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if len(backends) == 0 {
			fmt.Println("No backends found.")
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - Ensure the backend is running and advertising over mDNS")
			fmt.Println("  - Check that you are on the same network segment")
			fmt.Println("  - Try increasing --timeout for slower networks")
			return nil
		}

		fmt.Printf("Found %d backend(s):\n\n", len(backends))
		for i, b := range backends {
			fmt.Printf("%d. %s\n", i+1, b.Instance)
			fmt.Printf("   URL:     %s\n", b.BaseURL())
			if v := b.Version(); v != "" {
				fmt.Printf("   Version: %s\n", v)
			}
			fmt.Println()
		}

		fmt.Println("Use 'positions config add <name> --url <url>' to save a backend as a profile")
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
