// ABOUTME: play and info commands
// ABOUTME: Plays a recording through the audio output and prints its layout
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oply/opusrec/pkg/audio/decode"
	"github.com/oply/opusrec/pkg/audio/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayCommand(a *app) *cobra.Command {
	var volume int

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, withConsole); err != nil {
				return err
			}
			if volume < 0 || volume > 100 {
				return fmt.Errorf("volume %d out of range [0, 100]", volume)
			}
			return play(cmd.Context(), a.logger, args[0], volume)
		},
	}
	cmd.Flags().IntVar(&volume, "volume", 100, "playback volume 0-100")
	return cmd
}

func play(ctx context.Context, logger *zap.Logger, path string, volume int) error {
	r, err := decode.OpenFile(path)
	if err != nil {
		return err
	}
	defer r.Close()

	out := output.NewOto(logger)
	if err := out.Open(r.Format()); err != nil {
		return err
	}
	defer out.Close()
	out.SetVolume(volume)

	logger.Info("Playing", zap.String("path", path), zap.Int("sample_rate", r.Format().SampleRate))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		samples, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if err := out.Write(samples); err != nil {
			return err
		}
	}

	if err := out.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the layout and duration of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.stdout = cmd.OutOrStdout()
			info, err := decode.ProbeFile(args[0])
			if err != nil {
				return err
			}
			a.printf("File:        %s\n", args[0])
			a.printf("Sample rate: %d Hz\n", info.SampleRate)
			a.printf("Channels:    %d\n", info.Channels)
			if info.Packets > 0 {
				a.printf("Packets:     %d\n", info.Packets)
				a.printf("Pre-skip:    %d\n", info.PreSkip)
				a.printf("Granule:     %d\n", info.Granule)
			}
			a.printf("Duration:    %s\n", info.Duration)
			return nil
		},
	}
}
