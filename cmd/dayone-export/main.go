package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dayone-export/internal/app"
	"dayone-export/internal/config"
	"dayone-export/internal/database"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Flags shared by every command that touches the database or output directory.
var (
	configPath string
	overrides  app.Overrides
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var nf *database.NotFoundError
		if errors.As(err, &nf) {
			printDatabaseHelp(os.Stderr)
		}
		os.Exit(1)
	}
}

// printDatabaseHelp explains where the Day One database is expected.
func printDatabaseHelp(w io.Writer) {
	fmt.Fprintln(w, "\nMake sure Day One is installed and you have entries synced.")
	defaults, err := app.GetDefaults()
	if err != nil {
		return
	}
	fmt.Fprintln(w, "The database should be at:")
	fmt.Fprintf(w, "  %s\n", defaults.DBPath)
}

// loadConfig layers defaults, the config file and command-line flags.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	path := configPath
	if path == "" {
		path = defaults.ConfigPath
	}

	cfg, err := app.LoadConfig(path, defaults, overrides)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, path, nil
}

// newApp reads the config and creates an ExportApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Export", "Publish").
func newApp(operation string) (*app.ExportApp, *config.Config, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	a, err := app.NewExportApp(cfg, operation, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, cfg, nil
}

// progressPrinter reports export progress, redrawing one line on a terminal.
func progressPrinter(w *os.File) func(done, total int) {
	if term.IsTerminal(int(w.Fd())) {
		return func(done, total int) {
			fmt.Fprintf(w, "\rProcessing entry %d/%d...", done, total)
		}
	}
	return func(done, total int) {
		fmt.Fprintf(w, "Processing entry %d/%d...\n", done, total)
	}
}

// readPassphrase prompts on stderr and reads a passphrase without echo when
// stdin is a terminal, or a single line otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

var rootCmd = &cobra.Command{
	Use:           "dayone-export",
	Short:         "Export Day One journals to JSON with media",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Connect(); err != nil {
			return err
		}
		fmt.Printf("Connected to Day One database: %s\n", cfg.DBPath)

		summary, err := a.Export(app.ExportCallbacks{
			JournalsLoaded: func(n int) { fmt.Printf("Found %d journals\n", n) },
			EntriesLoaded:  func(n int) { fmt.Printf("Found %d entries\n", n) },
			Progress:       progressPrinter(os.Stdout),
		})
		if err != nil {
			return err
		}
		if summary.Entries >= 100 && term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println()
		}

		fmt.Println("\nExport complete!")
		fmt.Printf("  Entries: %d\n", summary.Entries)
		fmt.Printf("  Output: %s\n", summary.OutputFile)
		fmt.Printf("  Media: %s\n", summary.MediaDir)
		if summary.MediaMissing > 0 {
			fmt.Printf("  Missing media: %d\n", summary.MediaMissing)
		}

		publish, _ := cmd.Flags().GetBool("publish")
		if !publish {
			return nil
		}
		manifest, err := a.Publish()
		if err != nil {
			return fmt.Errorf("publishing export: %w", err)
		}
		fmt.Printf("Published export %s (%d objects)\n", manifest.ExportID, len(manifest.Objects))
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		path := configPath
		if path == "" {
			path = defaults.ConfigPath
		}

		if err := config.Init(path, defaults.Config()); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Database:   %s\n", cfg.DBPath)
		fmt.Printf("Photos:     %s\n", cfg.PhotosPath)
		fmt.Printf("Output:     %s\n", cfg.OutputDir)
		if cfg.Journal != "" {
			fmt.Printf("Journal:    %s\n", cfg.Journal)
		}
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Log Level:  %s\n", cfg.LogLevel)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used to encrypt published exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := newApp("InitKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		recipient, err := a.InitKeys(pass)
		if err != nil {
			return err
		}
		fmt.Println("Encryption keys generated.")
		if recipient != "" {
			fmt.Printf("Public key: %s\n", recipient)
		}
		return nil
	},
}

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List journals in the Day One database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := newApp("Journals")
		if err != nil {
			return err
		}
		defer a.Close()

		journals, err := a.Journals()
		if err != nil {
			return err
		}

		fmt.Printf("Found %d journals\n", len(journals))
		for _, j := range journals {
			fmt.Printf("  %d\t%s\t%s\n", j.ID, orDash(j.UUID), orDash(j.Name))
		}
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the last export to the configured vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := newApp("Publish")
		if err != nil {
			return err
		}
		defer a.Close()

		manifest, err := a.Publish()
		if err != nil {
			return err
		}
		fmt.Printf("Published export %s (%d objects)\n", manifest.ExportID, len(manifest.Objects))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download a published export from the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		id, _ := cmd.Flags().GetString("id")
		dest, _ := cmd.Flags().GetString("dest")
		if dest == "" {
			dest = cfg.OutputDir
		}

		restored, err := a.Restore(id, dest, func() (string, error) {
			return readPassphrase("Passphrase: ")
		})
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d files to %s\n", len(restored), dest)
		return nil
	},
}

func init() {
	// global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $DAYONE_EXPORT_CONFIG or ~/.config/dayone-export.toml)")
	rootCmd.PersistentFlags().StringVar(&overrides.DBPath, "db", "", "Path to DayOne.sqlite")
	rootCmd.PersistentFlags().StringVar(&overrides.PhotosPath, "photos", "", "Path to the DayOnePhotos directory")
	rootCmd.PersistentFlags().StringVarP(&overrides.OutputDir, "output", "o", "", "Output directory (default ./data)")
	rootCmd.PersistentFlags().StringVarP(&overrides.Journal, "journal", "j", "", "Export only the journal with this name")
	rootCmd.Flags().Bool("publish", false, "Publish the export to the configured vault when done")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	restoreCmd.Flags().String("id", "", "Export ID to restore (default latest)")
	restoreCmd.Flags().String("dest", "", "Destination directory (default the output directory)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(journalsCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(restoreCmd)
}
