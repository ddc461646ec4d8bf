package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/device"
	"github.com/sweeney/plugwatch/internal/kasa"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip the plug state once",
	Long: `Query the plug and set it to the opposite state. Talks to the plug
directly; a running daemon serializes with this through the device,
not through the process.`,
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	toggleCmd.Flags().String("state", "", "set an explicit state (on, off) instead of flipping")
}

func runToggle(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Printf("warning: %v, using defaults\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := kasa.NewClient(cfg.PlugAddr, cfg.PlugIndex)

	var target device.PlugState
	switch state, _ := cmd.Flags().GetString("state"); state {
	case "":
		current, err := client.QueryState(ctx)
		if err != nil {
			return fmt.Errorf("query plug: %w", err)
		}
		target = current.Opposite()
	case "on":
		target = device.StateOn
	case "off":
		target = device.StateOff
	default:
		return fmt.Errorf("state must be on or off, got %q", state)
	}

	if err := client.SetState(ctx, target); err != nil {
		return fmt.Errorf("set plug state: %w", err)
	}
	fmt.Printf("plug is now %s\n", target)
	return nil
}
