// command semivibe-monitor is a read-only terminal dashboard for a running
// Semi-Vibe-Device, polled over the driver package.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"semivibe.dev/driver"
)

func main() {
	host := flag.String("host", driver.DefaultHost, "device address")
	port := flag.Int("port", driver.DefaultPort, "device TCP port")
	interval := flag.Duration("interval", 500*time.Millisecond, "poll interval")
	flag.Parse()

	drv := driver.NewDriver(driver.Config{Host: *host, Port: *port})
	if err := drv.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "semivibe-monitor: connect: %v\n", err)
		os.Exit(1)
	}
	defer drv.Disconnect()

	m := newModel(drv, *interval)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "semivibe-monitor: %v\n", err)
		os.Exit(1)
	}
}
