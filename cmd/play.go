package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelmark-cli/reelmark/catalog"
	"github.com/reelmark-cli/reelmark/engine"
	"github.com/reelmark-cli/reelmark/history"
	"github.com/reelmark-cli/reelmark/icon"
	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/reelmark-cli/reelmark/media"
	"github.com/reelmark-cli/reelmark/offline"
	"github.com/reelmark-cli/reelmark/player"
	"github.com/reelmark-cli/reelmark/resume"
	"github.com/reelmark-cli/reelmark/tui"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/reelmark-cli/reelmark/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("catalog", "c", "", "Course document to play")
	lo.Must0(playCmd.MarkFlagRequired("catalog"))

	playCmd.Flags().StringP("video", "V", "", "Video id to start from instead of the first video")

	playCmd.Flags().BoolP("offline", "o", false, "Play downloaded files only")
	lo.Must0(viper.BindPFlag(key.PlayerOffline, playCmd.Flags().Lookup("offline")))

	playCmd.Flags().StringP("index", "i", "", "Download index of the course")
	lo.Must0(viper.BindPFlag(key.DownloadsIndex, playCmd.Flags().Lookup("index")))
}

// exitSignals end playback through the same teardown as quitting the view.
var exitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// playCmd plays a course and keeps its watch progress.
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a course, resuming where you left off",
	Example: `  reelmark play --catalog go-101.json
  reelmark play --catalog go-101.json --video l21 --offline`,
	Run: func(cmd *cobra.Command, args []string) {
		course, err := catalog.Load(lo.Must(cmd.Flags().GetString("catalog")))
		handleErr(err)

		start, err := startRef(course, lo.Must(cmd.Flags().GetString("video")))
		handleErr(err)

		indexPath := viper.GetString(key.DownloadsIndex)
		if indexPath == "" {
			indexPath = where.DownloadIndex(course.ID())
		}
		index, err := loadIndex(indexPath)
		handleErr(err)

		playerName := viper.GetString(key.Player)
		p, err := player.New(playerName)
		handleErr(err)
		handleErr(checkPlayer(playerName))
		if mpv, ok := p.(*player.MPV); ok {
			mpv.StartPaused = true
		}

		persister, closeHistory, err := openHistory()
		handleErr(err)

		positions, _ := persister.(history.Reader)

		timeout := time.Duration(viper.GetInt(key.HistoryFlushTimeout)) * time.Second
		session, err := engine.New(engine.Options{
			ProfileID:    viper.GetString(key.ProfileID),
			Course:       course,
			Player:       p,
			Persister:    persister,
			FlushTimeout: timeout,
			Positions:    positions,
			Index:        index,
			Offline:      viper.GetBool(key.PlayerOffline),
		})
		if err != nil {
			closeHistory()
			handleErr(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), exitSignals...)
		err = prepare(session, start)
		if err == nil {
			err = tui.Run(ctx, &tui.Options{
				Session:   session,
				Player:    p,
				Start:     start,
				IndexPath: indexPath,
			})
			if ctx.Err() != nil {
				err = nil
			}
		}
		stop()

		session.Teardown()
		drain(session, timeout)
		closeHistory()

		handleErr(err)
	},
}

func startRef(course *catalog.Course, videoID string) (media.Ref, error) {
	if videoID == "" {
		ref, ok := course.First().Get()
		if !ok {
			return media.Ref{}, fmt.Errorf("course %s has no videos", course.ID())
		}
		return ref, nil
	}

	ref, ok := course.Find(videoID).Get()
	if !ok {
		return media.Ref{}, fmt.Errorf("%w: %s", engine.ErrUnknownVideo, videoID)
	}
	return ref, nil
}

// loadIndex reads the download index. A missing index is an empty one.
func loadIndex(path string) (*offline.Index, error) {
	index, err := offline.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Infof("no download index at %s", path)
		return offline.NewIndex(nil), nil
	}
	return index, err
}

func openHistory() (history.Persister, func(), error) {
	if !viper.GetBool(key.HistorySave) {
		return history.Discard, func() {}, nil
	}

	store, err := history.Open(viper.GetString(key.HistoryBackend))
	if err != nil {
		return nil, nil, err
	}

	return store, func() {
		if err := store.Close(); err != nil {
			log.Warnf("close history: %v", err)
		}
	}, nil
}

// prepare mounts the first video before the view starts, so a missing download
// aborts early and a resume decision is asked on the plain terminal.
func prepare(session *engine.Session, start media.Ref) error {
	var missing bool
	session.SetEventHandler(func(e engine.Event) {
		if e.Kind == engine.OfflineFileMissing {
			missing = true
		}
	})

	source, err := session.Mount(start)
	if err != nil {
		return err
	}

	if missing {
		return fmt.Errorf("%s %s is unavailable offline", icon.Get(icon.Offline), start)
	}
	if source.IsAbsent() {
		return fmt.Errorf("%s has no playable source", start)
	}

	snapshot, ok := session.Prompt().Get()
	if !ok {
		return nil
	}

	choice, err := askResume(snapshot)
	if err != nil {
		return err
	}
	return session.Choose(choice)
}

func askResume(snapshot resume.Snapshot) (resume.Choice, error) {
	at := snapshot.DisplayTime
	if at == "" {
		at = util.Clock(snapshot.TimestampSeconds)
	}

	var answer int
	err := survey.AskOne(&survey.Select{
		Message: "You stopped partway through this video",
		Options: []string{
			fmt.Sprintf("%s Resume from %s", icon.Get(icon.Resume), at),
			fmt.Sprintf("%s Start over", icon.Get(icon.Restart)),
		},
	}, &answer)
	if err != nil {
		return resume.Restart, err
	}

	if answer == 0 {
		return resume.Resume, nil
	}
	return resume.Restart, nil
}

func drain(session *engine.Session, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := session.Drain(ctx); err != nil {
		log.Warnf("position writes still pending: %v", err)
	}
}
