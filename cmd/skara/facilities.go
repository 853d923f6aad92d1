package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"skara-bot/internal/format"
	"skara-bot/internal/geo"
)

func facilitiesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "Print the facility registry as the bot would list it",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := geo.LoadRegistry(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.FacilityList(reg.All()))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML registry (default: built-in list)")
	return cmd
}

func nearestCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "nearest <lat> <lon>",
		Short: "Print the facility closest to a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[1])
			}

			reg, err := geo.LoadRegistry(file)
			if err != nil {
				return err
			}
			m, ok := reg.Nearest(lat, lon)
			fmt.Fprintln(cmd.OutOrStdout(), format.Nearest(m, ok))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML registry (default: built-in list)")
	return cmd
}
