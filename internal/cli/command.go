package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/delimit/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "delimit",
		Short: "Delimited text to Anki cards",
		Long: `delimit turns delimiter-separated card text into notes of an Anki
collection, previews cards as self-contained HTML and exports all
cards as one printable HTML document.

The card text, tags, delimiters and field mapping live in a session
file that every subcommand reads and updates.

Examples:
  delimit load cards.txt --tags tags.txt   # Load card lines into the session
  delimit deck use "Inglês"                # Select the target deck
  delimit notetypes --use Basic            # Select the note type
  delimit map 0=Back 1=Front               # Map line parts to fields
  delimit preview --line 2 --open          # Preview the second line
  delimit add                              # Create the notes
  delimit export -o cards.html             # Export all lines as HTML`,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newLoadCmd(flags),
		newAddCmd(flags),
		newPreviewCmd(flags),
		newViewCmd(flags),
		newExportCmd(flags),
		newShowCmd(flags),
		newRestoreCmd(flags),
		newDecksCmd(flags),
		newDeckCmd(flags),
		newNoteTypesCmd(flags),
		newMapCmd(flags),
		newDelimitersCmd(flags),
		newTagsCmd(flags),
		newMediaCmd(flags),
		newGridCmd(flags),
		newCleanCmd(flags),
		newWatchCmd(flags),
		newAPKGCmd(flags),
		newArchiveCmd(flags),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.delimit.yaml)")
	cmd.PersistentFlags().StringVar(&flags.CollectionPath, "collection", flags.CollectionPath, "Anki collection file")
	cmd.PersistentFlags().StringVar(&flags.StatePath, "state", flags.StatePath, "Session state file")
	cmd.PersistentFlags().StringVar(&flags.Language, "language", "", "Message language: pt or en (default: session language)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Console log level: none, normal or debug")
	cmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "Also write a debug log to this file")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("collection.path", cmd.PersistentFlags().Lookup("collection"))
	viper.BindPFlag("state.path", cmd.PersistentFlags().Lookup("state"))
	viper.BindPFlag("language", cmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", cmd.PersistentFlags().Lookup("log-file"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".delimit" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".delimit")
	}

	viper.SetDefault("export.cards_per_row", 3)
	viper.SetDefault("render.back_landmarks", []string{"TRADUÇÃO"})

	// Environment variables
	viper.SetEnvPrefix("DELIMIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
