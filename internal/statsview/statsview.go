// Package statsview serves live runtime charts (heap, goroutines, GC) while
// the emulator runs.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server on a new goroutine and reports where it
// can be reached. The server lives until the process exits.
func Launch(output io.Writer, addr string) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	go func() {
		mgr := statsview.New()
		mgr.Start()
	}()
	fmt.Fprintf(output, "stats server available at http://%s%s\n", addr, url)
}
