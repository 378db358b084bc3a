package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/ipc"
)

func newStationCommand(ctx *commandContext) *cobra.Command {
	stationCmd := &cobra.Command{
		Use:         "station",
		Short:       "Control the running scan station daemon",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	stationCmd.AddCommand(newStationStatusCommand(ctx))
	stationCmd.AddCommand(newStationDevicesCommand(ctx))
	stationCmd.AddCommand(newStationSwitchCommand(ctx))
	stationCmd.AddCommand(newStationScansCommand(ctx))
	stationCmd.AddCommand(newStationPauseCommand(ctx))
	stationCmd.AddCommand(newStationResumeCommand(ctx))
	stationCmd.AddCommand(newStationStopCommand(ctx))

	return stationCmd
}

func newStationStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running:  %s\n", yesNo(status.Running))
				fmt.Fprintf(out, "Paused:   %s\n", yesNo(status.Paused))
				fmt.Fprintf(out, "Device:   %s\n", orDash(status.Device))
				fmt.Fprintf(out, "Scans:    %d\n", status.ScanCount)
				fmt.Fprintf(out, "Journal:  %s\n", status.JournalPath)
				fmt.Fprintf(out, "Lock:     %s\n", status.LockPath)
				fmt.Fprintf(out, "PID:      %d\n", status.PID)
				return nil
			})
		},
	}
}

func newStationDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Devices()
				if err != nil {
					return err
				}
				if len(resp.Devices) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No capture devices attached.")
					return nil
				}
				rows := make([][]string, 0, len(resp.Devices))
				for _, device := range resp.Devices {
					rows = append(rows, []string{
						device.ID,
						orDash(device.Label),
						yesNo(device.Active),
					})
				}
				renderTable(cmd.OutOrStdout(), []column{
					{Title: "Device"},
					{Title: "Label"},
					{Title: "Active"},
				}, rows)
				return nil
			})
		},
	}
}

func newStationSwitchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <device>",
		Short: "Move capture to another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Switch(args[0])
				if err != nil {
					return err
				}
				if !resp.Switched {
					return fmt.Errorf("switch failed: %s", resp.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now capturing from %s.\n", resp.Device)
				return nil
			})
		},
	}
}

func newStationScansCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Show the newest journaled scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecentScans(limit)
				if err != nil {
					return err
				}
				if len(resp.Scans) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(resp.Scans))
				for _, scan := range resp.Scans {
					rows = append(rows, []string{
						formatLocalTime(scan.At),
						orDash(scan.ShortID),
						scan.Outcome,
						orDash(scan.Detail),
					})
				}
				renderTable(cmd.OutOrStdout(), []column{
					{Title: "Time"},
					{Title: "Short ID"},
					{Title: "Outcome"},
					{Title: "Detail"},
				}, rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of scans to show")
	return cmd
}

func newStationPauseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Suspend scan handling without releasing the camera",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Pause(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Station paused.")
				return nil
			})
		},
	}
}

func newStationResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume scan handling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Resume(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Station resumed.")
				return nil
			})
		},
	}
}

func newStationStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Shutdown requested.")
				return nil
			})
		},
	}
}
