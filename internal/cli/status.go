package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/plugwatch/internal/config"
	"github.com/sweeney/plugwatch/internal/kasa"
	"github.com/sweeney/plugwatch/internal/sample"
	"github.com/sweeney/plugwatch/internal/web"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plug and condition status",
	Long: `Show the plug state, battery level, and monitored applications.
By default the plug and local conditions are queried directly; with
--remote the running daemon's HTTP endpoint is asked instead, which
also reports monitor state and failure history.`,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("remote", false, "query the running daemon over HTTP")
	statusCmd.Flags().String("format", "table", "output format (table, json)")
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Printf("warning: %v, using defaults\n", err)
	}
	format, _ := cmd.Flags().GetString("format")
	remote, _ := cmd.Flags().GetBool("remote")

	if remote {
		return remoteStatus(cfg, format)
	}
	return localStatus(cfg, format)
}

// remoteStatus asks the running daemon for its status.
func remoteStatus(cfg *config.Config, format string) error {
	addr := cfg.HTTPAddr
	if addr == "" {
		return fmt.Errorf("http_addr is empty in the config, no daemon endpoint to query")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/index.json")
	if err != nil {
		return fmt.Errorf("query daemon: %w", err)
	}
	defer resp.Body.Close()

	var sj web.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		return fmt.Errorf("decode daemon status: %w", err)
	}

	if format == "json" {
		out, _ := json.MarshalIndent(sj, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	st := sj.Status
	fmt.Printf("Plug:        %s (want %s)\n", st.Plug.Actual, st.Plug.Desired)
	if st.BatteryPercent != nil {
		fmt.Printf("Battery:     %d%%\n", *st.BatteryPercent)
	} else {
		fmt.Printf("Battery:     unavailable\n")
	}
	fmt.Printf("Monitoring:  %v\n", st.Monitoring)
	if len(st.RunningApps) > 0 {
		fmt.Printf("Apps:        %s\n", strings.Join(st.RunningApps, ", "))
	}
	if st.Plug.Error != "" {
		fmt.Printf("Last error:  %s (streak %d)\n", st.Plug.Error, st.Plug.FailureStreak)
	}
	if start, err := time.Parse(time.RFC3339, st.StartTime); err == nil {
		fmt.Printf("Daemon up:   %s\n", humanize.Time(start))
	}
	return nil
}

// localStatus queries the plug and local conditions directly.
func localStatus(cfg *config.Config, format string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := kasa.NewClient(cfg.PlugAddr, cfg.PlugIndex)
	info, plugErr := client.Info(ctx)

	snap := sample.NewSystemSampler(zap.NewNop()).Sample(ctx)
	running := make([]string, 0, len(cfg.Apps))
	for _, app := range cfg.Apps {
		if snap.Running(app) {
			running = append(running, app)
		}
	}
	sort.Strings(running)

	if format == "json" {
		out := map[string]interface{}{
			"battery_available": snap.BatteryOK,
			"running_apps":      running,
		}
		if plugErr != nil {
			out["plug_error"] = plugErr.Error()
		} else {
			out["plug"] = map[string]interface{}{
				"alias":   info.Alias,
				"model":   info.Model,
				"sockets": info.Sockets,
				"state":   string(info.State),
			}
		}
		if snap.BatteryOK {
			out["battery_percent"] = snap.Battery
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if plugErr != nil {
		fmt.Printf("Plug:        unreachable (%v)\n", plugErr)
	} else {
		name := info.Alias
		if name == "" {
			name = info.Model
		}
		fmt.Printf("Plug:        %s (%s)\n", info.State, name)
	}
	if snap.BatteryOK {
		fmt.Printf("Battery:     %d%%\n", snap.Battery)
	} else {
		fmt.Printf("Battery:     unavailable\n")
	}
	if len(running) > 0 {
		fmt.Printf("Apps:        %s\n", strings.Join(running, ", "))
	} else {
		fmt.Printf("Apps:        none of %s running\n", strings.Join(cfg.Apps, ", "))
	}
	return nil
}
