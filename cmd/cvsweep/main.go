// Command cvsweep configures the instrument, runs one sweep, and
// writes the captured trace as CSV.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/host"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "instrument serial port")
	vlow := flag.Float64("vlow", -1.0, "lower sweep bound (V)")
	vhigh := flag.Float64("vhigh", 0.6, "upper sweep bound (V)")
	scanRate := flag.Float64("scanrate", 160, "scan rate (mV/s)")
	scans := flag.Int("scans", 1, "number of full up/down cycles")
	output := flag.String("o", "", "output CSV file (default stdout)")
	mock := flag.Bool("mock", false, "use a simulated instrument instead of hardware")
	flag.Parse()

	var instrument host.Instrument
	if *mock {
		instrument = host.NewMock(nil, 0)
	} else {
		instrument = host.New(*port, 0)
	}

	if err := instrument.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer instrument.Close()

	ack, err := instrument.Handshake(0)
	if err != nil {
		log.Fatalf("Handshake failed: %v", err)
	}
	log.Printf("Handshake: %s", ack)

	sweepTime := host.SweepTimeForScanRate(*vlow, *vhigh, *scanRate)
	if err := instrument.SetVoltageRange(*vlow, *vhigh); err != nil {
		log.Fatalf("Failed to set voltage range: %v", err)
	}
	if err := instrument.SetSweepTime(sweepTime); err != nil {
		log.Fatalf("Failed to set sweep time: %v", err)
	}
	if err := instrument.SetScanCount(*scans); err != nil {
		log.Fatalf("Failed to set scan count: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Sweeping %g V to %g V at %g mV/s, %d scan(s), %s per cycle",
		*vlow, *vhigh, *scanRate, *scans, sweepTime)
	if err := instrument.StartPause(); err != nil {
		log.Fatalf("Failed to start sweep: %v", err)
	}

	var records []host.Record
collect:
	for {
		select {
		case r, ok := <-instrument.Records():
			if !ok {
				break collect
			}
			records = append(records, r)
		case <-instrument.SweepDone():
			break collect
		case <-sig:
			log.Println("Interrupted, stopping sweep")
			if err := instrument.Stop(); err != nil {
				log.Printf("Failed to stop sweep: %v", err)
			}
			// Give the last records a moment to drain.
			time.Sleep(200 * time.Millisecond)
			break collect
		}
	}

	// Drain anything still buffered.
drain:
	for {
		select {
		case r, ok := <-instrument.Records():
			if !ok {
				break drain
			}
			records = append(records, r)
		default:
			break drain
		}
	}

	log.Printf("Captured %d records", len(records))

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := host.WriteCSV(out, records); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
}
