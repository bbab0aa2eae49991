// Command nvtrcdump inspects nvtrc captures. It decodes each argument,
// optionally pretty-prints descriptors and records, and optionally adapts
// the capture to the generic trace events a visualizer would ingest.
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"
	"golang.org/x/exp/slices"
	"golang.org/x/text/message"

	"github.com/adamnv/gpuvis/trace"
	"github.com/adamnv/gpuvis/trace/nvtrc"
)

var local = message.NewPrinter(message.MatchLanguage("en"))

var (
	flagDescs      = flag.Bool("descs", false, "pretty-print device descriptors")
	flagRecords    = flag.Bool("records", false, "pretty-print raw records")
	flagEvents     = flag.Bool("events", false, "print adapted trace events in time order")
	flagRaw        = flag.Bool("raw", false, "keep timestamps in the GPU clock domain")
	flagCPUProfile = flag.Bool("cpuprofile", false, "write a CPU profile to the current directory")
)

func main() {
	log.SetFlags(0)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <capture.nvtrc>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(paths []string) error {
	if *flagCPUProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	failed := false
	for _, path := range paths {
		if err := dump(path); err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		return errors.New("not all captures could be read")
	}
	return nil
}

func dump(path string) error {
	fd, err := nvtrc.ReadFile(path)
	if err != nil {
		return err
	}
	for i := range fd.Devices {
		fmt.Fprintf(os.Stderr, "nvtrc: %s: GPU device #%d is %s\n", path, i+1, fd.Devices[i].Name)
		fmt.Fprintf(os.Stderr, "nvtrc: %s: GPU device #%d has %d records\n", path, i+1, len(fd.Records[i]))
	}

	if *flagDescs || *flagRecords {
		nvtrc.PrettyPrint(os.Stdout, fd, *flagDescs, *flagRecords)
	}

	if !*flagEvents {
		total := 0
		for _, recs := range fd.Records {
			total += len(recs)
		}
		local.Printf("%s: %d devices, %d records\n", path, len(fd.Devices), total)
		return nil
	}

	var pool trace.StringPool
	var evs []trace.Event
	info := nvtrc.AdaptTrace(fd, path, &pool, *flagRaw, func(ev trace.Event) {
		evs = append(evs, ev)
	})
	// Stable keeps per-device capture order for equal timestamps.
	slices.SortStableFunc(evs, func(a, b trace.Event) int {
		return cmp.Compare(a.Ts, b.Ts)
	})
	for _, ev := range evs {
		fmt.Printf("%13d %-40s pid=%-10d %s\n", ev.Ts, pool.Lookup(ev.Name), ev.PID, pool.Lookup(ev.System))
	}
	local.Printf("%s: %q: %d events, timeline origin %d\n", path, info.Label, len(evs), int64(info.MinTs))
	return nil
}
