package cmd

import (
	"fmt"
	"os"

	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/reelmark-cli/reelmark/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("index", "i", "", "Download index to look in")
	resolveCmd.Flags().StringP("course", "C", "", "Course whose default download index is used when --index is not set")
	resolveCmd.MarkFlagsOneRequired("index", "course")

	resolveCmd.Flags().StringP("type", "t", string(media.Single), "Content type: single, series, playlist or trailer")
	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(media.ContentTypes, func(t media.ContentType, _ int) string { return string(t) }), cobra.ShellCompDirectiveNoFileComp
	}))

	resolveCmd.Flags().Int("series", -1, "Zero-based episode index of a series")
	resolveCmd.Flags().Int("chapter", -1, "Zero-based chapter index of a playlist")
	resolveCmd.Flags().Int("lesson", -1, "Zero-based lesson index within the chapter")

	resolveCmd.SetOut(os.Stdout)
}

// resolveCmd prints the downloaded file of a video slot.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the downloaded file of a video",
	Example: `  reelmark resolve --course go-101 --type series --series 2
  reelmark resolve --index downloads.json --type playlist --chapter 1 --lesson 0`,
	Run: func(cmd *cobra.Command, args []string) {
		path := lo.Must(cmd.Flags().GetString("index"))
		if path == "" {
			path = viper.GetString(key.DownloadsIndex)
		}
		if path == "" {
			path = where.DownloadIndex(lo.Must(cmd.Flags().GetString("course")))
		}

		ref, err := slotRef(
			lo.Must(cmd.Flags().GetString("type")),
			lo.Must(cmd.Flags().GetInt("series")),
			lo.Must(cmd.Flags().GetInt("chapter")),
			lo.Must(cmd.Flags().GetInt("lesson")),
		)
		handleErr(err)

		index, err := offline.Load(path)
		handleErr(err)

		local, ok := index.Resolve(ref).Get()
		if !ok {
			handleErr(fmt.Errorf("%s is not downloaded", ref))
		}
		cmd.Println(local)
	},
}

// slotRef builds a reference to a slot of the given shape. Resolution ignores video ids.
func slotRef(contentType string, series, chapter, lesson int) (media.Ref, error) {
	kind, err := media.ParseContentType(contentType)
	if err != nil {
		return media.Ref{}, err
	}

	var ref media.Ref
	switch kind {
	case media.Single:
		ref = media.SingleVideo("-")
	case media.Trailer:
		ref = media.TrailerVideo("-")
	case media.Series:
		ref = media.Episode("-", series)
	case media.Playlist:
		ref = media.Lesson("-", chapter, lesson)
	}

	if err := ref.Validate(); err != nil {
		return media.Ref{}, fmt.Errorf("%s needs its indices: %w", kind, err)
	}
	return ref, nil
}
