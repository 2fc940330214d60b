// ABOUTME: devices and version commands
// ABOUTME: Lists capture devices and prints build information
package cli

import (
	"runtime"

	"github.com/oply/opusrec/internal/version"
	"github.com/oply/opusrec/pkg/audio/capture"
	"github.com/spf13/cobra"
)

func newDevicesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.stdout = cmd.OutOrStdout()
			devices, err := capture.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				a.printf("No capture devices found\n")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.IsDefault {
					marker = "*"
				}
				a.printf("%s %s\n", marker, d.Name)
			}
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.stdout = cmd.OutOrStdout()
			a.printf("%s %s (%s) %s %s/%s\n", version.Product, version.Version, version.Manufacturer,
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
