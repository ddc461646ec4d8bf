package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/plugwatch/internal/autostart"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage the OS autostart registration",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Register the daemon to start at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := autostart.New()
		if err != nil {
			return err
		}
		if err := reg.Enable(); err != nil {
			return err
		}
		fmt.Println("autostart enabled")
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the autostart registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := autostart.New()
		if err != nil {
			return err
		}
		if err := reg.Disable(); err != nil {
			return err
		}
		fmt.Println("autostart disabled")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether autostart is registered",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := autostart.New()
		if err != nil {
			return err
		}
		enabled, err := reg.Enabled()
		if err != nil {
			return err
		}
		if enabled {
			fmt.Println("autostart is enabled")
		} else {
			fmt.Println("autostart is disabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autostartCmd)
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
}
