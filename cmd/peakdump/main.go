// Peak inspection tool: decodes an audio file and prints a bucketed
// waveform overview.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nvaucher/lowtide/internal/audiobuf"
)

func main() {
	buckets := flag.Int("buckets", 64, "number of peak buckets")
	bars := flag.Bool("bars", false, "render peaks as bar characters instead of numbers")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	buf, err := audiobuf.Decode(data)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", path, err)
	}

	fmt.Printf("%s: %s, %d Hz, %d channels, %d frames, %.2fs\n",
		filepath.Base(path),
		humanize.Bytes(uint64(len(data))),
		buf.SampleRate(), buf.NumChannels(), buf.NumFrames(), buf.Duration())

	peaks := audiobuf.Peaks(buf, *buckets)
	if *bars {
		printBars(peaks)
		return
	}
	for i, p := range peaks {
		fmt.Printf("%4d %.4f\n", i, p)
	}
}

// printBars renders each peak as a vertical bar scaled to eight levels.
func printBars(peaks []float64) {
	levels := []rune(" ▁▂▃▄▅▆▇█")
	var sb strings.Builder
	for _, p := range peaks {
		idx := int(p * float64(len(levels)-1))
		if idx >= len(levels) {
			idx = len(levels) - 1
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(levels[idx])
	}
	fmt.Println(sb.String())
}
