// Package cmd implements the command-line interface of hlsplay.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/icon"
	"github.com/hlsplay/hlsplay/key"
	"github.com/hlsplay/hlsplay/log"
	"github.com/hlsplay/hlsplay/player"
	"github.com/hlsplay/hlsplay/style"
	"github.com/hlsplay/hlsplay/tui"
	"github.com/hlsplay/hlsplay/version"
	"github.com/hlsplay/hlsplay/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Save played sources to history")
	lo.Must0(viper.BindPFlag(key.HistorySave, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.Flags().BoolP("continue", "c", false, "Load the most recently played source")
	rootCmd.Flags().IntP("volume", "V", 100, "Initial volume from 0 to 100")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, rootCmd.Flags().Lookup("volume")))
	rootCmd.Flags().BoolP("muted", "m", false, "Start muted")
	lo.Must0(viper.BindPFlag(key.PlayerMuted, rootCmd.Flags().Lookup("muted")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Sockets of crashed runs are left behind in the temp directory.
	go player.RemoveStaleSockets(where.Temp())
}

// rootCmd launches the player.
var rootCmd = &cobra.Command{
	Use:   constant.App + " [url]",
	Short: "A terminal player for HLS audio streams",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(style.HiRed).Render("    - A terminal player for HLS audio streams"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		options := tui.Options{
			Continue: lo.Must(cmd.Flags().GetBool("continue")),
			Volume:   float64(viper.GetInt(key.PlayerVolume)) / 100,
			Muted:    viper.GetBool(key.PlayerMuted),
		}

		if len(args) > 0 {
			options.Source = args[0]
		}

		handleErr(tui.Run(&options))
	},
}

// Execute runs the command tree.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
