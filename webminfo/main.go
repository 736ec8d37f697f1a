package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	webm "github.com/seqsense/webmcontainer"
	"github.com/seqsense/webmcontainer/mediainfo"
)

func main() {
	input := flag.String("input", "", "WebM file to inspect")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	webm.SetLogger(log)

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}

	report, err := mediainfo.Inspect(data)
	if err != nil {
		log.Fatalf("inspect failed (code %d): %v", webm.CodeOf(err), err)
	}
	fmt.Print(report)
}
