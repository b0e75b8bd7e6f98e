package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/muesli/reflow/wrap"
	"github.com/reelmark-cli/reelmark/color"
	"github.com/reelmark-cli/reelmark/history"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/progress"
	"github.com/reelmark-cli/reelmark/style"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("remove", "r", false, "Remove the matching entries")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().BoolP("all", "a", false, "Include every profile, not only the current one")

	historyCmd.SetOut(os.Stdout)
}

// historyCmd lists the saved playback positions.
var historyCmd = &cobra.Command{
	Use:   "history [filter]",
	Short: "List saved playback positions",
	Long:  "List saved playback positions, newest first. The optional filter is fuzzy-matched against course and video ids.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := history.Open(viper.GetString(key.HistoryBackend))
		handleErr(err)
		defer util.Ignore(store.Close)

		ctx := context.Background()
		entries, err := store.List(ctx)
		handleErr(err)

		if !lo.Must(cmd.Flags().GetBool("all")) {
			profile := viper.GetString(key.ProfileID)
			entries = lo.Filter(entries, func(e history.Entry, _ int) bool { return e.ProfileID == profile })
		}

		if len(args) == 1 {
			entries = filterEntries(entries, args[0])
		}

		if lo.Must(cmd.Flags().GetBool("remove")) {
			for _, e := range entries {
				handleErr(store.Remove(ctx, e))
			}
			cmd.Printf("%s removed %s\n", icon.Get(icon.Success), util.Quantify(len(entries), "entry", "entries"))
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("no saved positions"))
			return
		}

		width := 80
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = w
		}

		for _, e := range entries {
			cmd.Println(wrap.String(renderEntry(e), width))
		}
	},
}

// filterEntries keeps the entries whose course or video id fuzzy-matches filter.
func filterEntries(entries []history.Entry, filter string) []history.Entry {
	return lo.Filter(entries, func(e history.Entry, _ int) bool {
		return fuzzy.MatchNormalizedFold(filter, e.CourseID) || fuzzy.MatchNormalizedFold(filter, e.VideoID)
	})
}

func renderEntry(e history.Entry) string {
	return fmt.Sprintf(
		"%s %s %s %s %s",
		style.Fg(color.Purple)(e.CourseID),
		style.Fg(color.Yellow)(e.VideoID),
		style.Percent(e.WatchedPercentage, progress.CompletionThreshold),
		style.Faint(fmt.Sprintf("at %s of %s", util.Clock(e.Timestamp), util.Clock(e.Duration))),
		style.Faint(e.UpdatedAt.Format("2006-01-02 15:04")),
	)
}
