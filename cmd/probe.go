package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"reflect"

	"github.com/hlsplay/hlsplay/auth"
	"github.com/hlsplay/hlsplay/engine/hls"
	"github.com/hlsplay/hlsplay/icon"
	"github.com/hlsplay/hlsplay/network"
	"github.com/hlsplay/hlsplay/style"
	"github.com/hlsplay/hlsplay/util"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	probeCmd.SetOut(os.Stdout)
}

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Resolve a source without playing it",
	Long:  "Fetch the manifest of a source and print its levels and the details of the level that would be played.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		erase := util.PrintErasable(fmt.Sprintf("%s Probing...", icon.Get(icon.Progress)))
		manifest, err := hls.Probe(ctx, network.Client(), args[0], auth.Headers)
		erase()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(manifest))
			return
		}

		printManifest(cmd, manifest)
	},
}

func printManifest(cmd *cobra.Command, manifest *hls.Manifest) {
	header := style.New().Bold(true).Foreground(style.HiPurple).Render
	details := manifest.Details

	cmd.Println(header("Source"), manifest.Source)

	kind := "media playlist"
	if manifest.Master {
		kind = "master playlist, " + util.Quantify(len(manifest.Levels), "level", "levels")
	}
	cmd.Println(header("Type"), kind)

	for _, level := range manifest.Levels {
		marker := lo.Ternary(level.Index == manifest.Level, style.Fg(style.AnsiGreen)("▸"), " ")
		line := fmt.Sprintf("%s %d %s", marker, level.Index, level.URI)
		if level.Bandwidth > 0 {
			line += style.Faint(fmt.Sprintf(" %d bps", level.Bandwidth))
		}
		if level.Codecs != "" {
			line += style.Faint(" " + level.Codecs)
		}
		cmd.Println(line)
	}

	duration := util.FormatClock(details.TotalDuration)
	if details.Live {
		duration = style.Fg(style.AnsiRed)("live") + style.Faint(" window "+duration)
	}

	cmd.Println(header("Duration"), duration)
	cmd.Println(header("Segments"), details.Segments, style.Faint(fmt.Sprintf("target %gs", details.TargetDuration)))
}

func init() {
	probeCmd.AddCommand(probeSchemaCmd)
}

var probeSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of probe --json output",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return t.Name()
		}

		handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&hls.Manifest{})))
	},
}
