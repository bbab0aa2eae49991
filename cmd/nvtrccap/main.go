// Command nvtrccap writes an nvtrc capture describing the GPUs present on
// this machine. The capture carries descriptors only: which devices exist
// and whether each could trace context switches, not the switches
// themselves.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/golang/snappy"

	"github.com/adamnv/gpuvis/nvgpu"
	"github.com/adamnv/gpuvis/trace/nvtrc"
)

var (
	flagOut      = flag.String("o", "capture.nvtrc", "output `path`")
	flagCompress = flag.Bool("compress", false, "snappy-frame the output")
)

func main() {
	log.SetFlags(0)
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	p := nvgpu.NewNVMLProvider()
	if err := p.Init(); err != nil {
		return err
	}
	defer p.Shutdown()

	fd, err := nvgpu.Snapshot(p)
	if err != nil {
		return err
	}
	if err := write(*flagOut, fd); err != nil {
		return err
	}

	for i := range fd.Devices {
		log.Printf("GPU device #%d is %s (context-switch trace: %v)", i+1, fd.Devices[i].Name, fd.Devices[i].TraceError)
	}
	log.Printf("wrote %d device descriptors to %s", len(fd.Devices), *flagOut)
	return nil
}

func write(path string, fd *nvtrc.FileData) error {
	if !*flagCompress {
		return nvtrc.WriteFile(path, fd)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := snappy.NewBufferedWriter(f)
	if err := nvtrc.Encode(w, fd); err != nil {
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
