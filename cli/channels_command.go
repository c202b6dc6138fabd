package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newChannelsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the channels defined in the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadChannelConfig(flags.configPath)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(cfg.Channels))
			for i, ch := range cfg.Channels {
				name := ch.Name
				if ch.DefaultName {
					name += " (from channel)"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), name, ch.URL, yesNo(ch.IsEnabled())})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Name", "URL", "Enabled"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
