package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/pkg/browser"
	"github.com/sarchlab/lockstep/keyboard"
	"github.com/sarchlab/lockstep/monitoring"
	"github.com/spf13/cobra"
)

const statsviewPath = "/debug/statsview"

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml> [other.yaml]",
	Short: "Run two simulations side by side under operator control.",
	Long: "`run a.yaml` compares a scenario against its own edits. " +
		"`run a.yaml b.yaml` compares two scenarios. " +
		"Keys: " + keyboard.Help(),
	Args: cobra.RangeArgs(1, 2),
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addSessionFlags(runCmd)

	f := runCmd.Flags()
	f.Bool("monitor", false, "serve the monitoring API")
	f.Int("monitor-port", 0, "port of the monitoring API, random if 0")
	f.Bool("open-browser", false, "open the monitor in a browser")
	f.Bool("keyboard", true, "read operator keys from the terminal")
	f.Bool("statsview", false, "serve runtime charts")
	f.String("statsview-addr", "localhost:18066", "address of the charts")
}

func runSession(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "lockstep: ", log.LstdFlags)

	s, err := newSession(c, args, cfg, os.Stdout, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitor {
		m := monitoring.NewMonitor(s.driver).WithPortNumber(cfg.MonitorPort)
		url := m.StartServer()

		defer shutdownMonitor(m, logger)

		openBrowser, _ := c.Flags().GetBool("open-browser")
		if openBrowser {
			err = browser.OpenURL(url)
			if err != nil {
				logger.Printf("cannot open browser: %v", err)
			}
		}
	}

	withStats, _ := c.Flags().GetBool("statsview")
	if withStats {
		addr, _ := c.Flags().GetString("statsview-addr")
		launchStatsview(addr)
	}

	if cfg.Keyboard {
		tty, err := keyboard.OpenTTY()
		if err != nil {
			logger.Printf("keyboard disabled: %v", err)
		} else {
			defer tty.Close()

			fmt.Fprintln(os.Stderr, keyboard.Help())

			go func() {
				err := keyboard.Pump(ctx, tty, s.driver)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Print(err)
				}
			}()
		}
	}

	err = s.driver.Run(ctx)

	return errors.Join(err, s.close())
}

func shutdownMonitor(m *monitoring.Monitor, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := m.Shutdown(ctx)
	if err != nil {
		logger.Printf("monitor shutdown: %v", err)
	}
}

func launchStatsview(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(os.Stderr, "stats server available at http://%s%s\n",
		addr, statsviewPath)
}
