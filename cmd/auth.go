package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/hlsplay/hlsplay/auth"
	"github.com/hlsplay/hlsplay/icon"
	"github.com/hlsplay/hlsplay/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage bearer tokens for protected streams",
	Long: `Manage bearer tokens for protected streams.
Tokens are kept in the system keyring and sent as an Authorization header
with manifest requests and media requests to the same host.`,
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authSetCmd.Flags().StringP("token", "t", "", "Token to store. Prompted for when empty")
}

var authSetCmd = &cobra.Command{
	Use:   "set <host>",
	Short: "Store a token for a host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host, err := auth.Host(args[0])
		handleErr(err)

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			handleErr(survey.AskOne(&survey.Password{
				Message: fmt.Sprintf("Token for %s:", host),
			}, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(host, token))
		fmt.Printf(
			"%s token saved for %s\n",
			style.Fg(style.AnsiGreen)(icon.Get(icon.Success)),
			style.Fg(style.Purple)(host),
		)
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete <host>",
	Short:   "Delete the token of a host",
	Aliases: []string{"remove"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		host, err := auth.Host(args[0])
		handleErr(err)

		handleErr(auth.DeleteToken(host))
		fmt.Printf(
			"%s token deleted for %s\n",
			style.Fg(style.AnsiGreen)(icon.Get(icon.Success)),
			style.Fg(style.Purple)(host),
		)
	},
}
