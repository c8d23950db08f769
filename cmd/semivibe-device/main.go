// command semivibe-device runs the Semi-Vibe-Device TCP simulator.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"semivibe.dev/device"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	host := flag.String("host", device.DefaultHost, "address to listen on")
	port := flag.Int("port", device.DefaultPort, "TCP port to listen on")
	dumpOnExit := flag.String("dump-on-exit", "", "write a CBOR diagnostics snapshot to this path on shutdown")
	loadSnapshot := flag.String("load-snapshot", "", "restore a CBOR diagnostics snapshot from this path at startup")
	flag.Parse()

	d := device.New(device.Config{
		Host:    *host,
		Port:    *port,
		LogSink: func(line string) { log.Println(line) },
	})
	d.Init()

	if *loadSnapshot != "" {
		f, err := os.Open(*loadSnapshot)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		err = d.LoadSnapshot(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		log.Printf("restored snapshot from %s", *loadSnapshot)
	}

	if err := d.Start(); err != nil {
		return err
	}
	log.Printf("semivibe-device: listening on %s", d.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("semivibe-device: shutting down")
	if *dumpOnExit != "" {
		if err := dumpSnapshot(d, *dumpOnExit); err != nil {
			log.Printf("dump-on-exit: %v", err)
		} else {
			log.Printf("dump-on-exit: wrote %s", *dumpOnExit)
		}
	}
	return d.Stop()
}

func dumpSnapshot(d *device.Device, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.DumpSnapshot(f)
}
