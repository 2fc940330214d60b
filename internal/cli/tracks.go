// ABOUTME: tracks command
// ABOUTME: Lists finished recordings from the track registry
package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/oply/opusrec/internal/tracks"
	"github.com/spf13/cobra"
)

const trackTimeLayout = "2006-01-02 15:04:05"

func newTracksCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tracks [id]",
		Short: "List finished recordings, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, nil); err != nil {
				return err
			}
			store, err := tracks.Open(a.settings.Tracks.DB, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				track, err := store.Get(args[0])
				if err != nil {
					return err
				}
				a.printf("ID:       %s\n", track.ID)
				a.printf("Name:     %s\n", track.Name)
				a.printf("Path:     %s\n", track.Path)
				a.printf("Duration: %s\n", track.Duration())
				a.printf("Size:     %s\n", formatSize(track.SizeBytes))
				a.printf("Created:  %s\n", track.CreatedAt.Local().Format(trackTimeLayout))
				return nil
			}

			list, err := store.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.printf("No recordings yet\n")
				return nil
			}
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			a.printf("%s\n", renderTracks(list))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many recordings (0 shows all)")
	return cmd
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTracks(list []tracks.Track) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "DURATION", "SIZE", "CREATED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, tr := range list {
		t.Row(
			tr.ID,
			tr.Name,
			tr.Duration().String(),
			formatSize(tr.SizeBytes),
			tr.CreatedAt.Local().Format(trackTimeLayout),
		)
	}
	return t.Render()
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return strconv.FormatFloat(float64(n)/(1<<20), 'f', 1, 64) + " MiB"
	case n >= 1<<10:
		return strconv.FormatFloat(float64(n)/(1<<10), 'f', 1, 64) + " KiB"
	default:
		return strconv.FormatInt(n, 10) + " B"
	}
}
