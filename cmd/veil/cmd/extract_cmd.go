package cmd

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/veilforge/veil"
)

var (
	ExtractCmd   = flag.NewFlagSet("extract", flag.ExitOnError)
	xCarrierFile = ExtractCmd.String("carrier", "", "path to the carrier file")
	xCarrierType = ExtractCmd.String("type", "", "carrier type (image, audio, video, document); inferred from the extension when empty")
	xOutputDir   = ExtractCmd.String("output-dir", ".", "directory for the recovered payload")
	xPassword    = ExtractCmd.String("password", "", "password the payload was hidden with")
)

func RunExtractCmd() int {
	if *xCarrierFile == "" {
		log.Fatalln("You must specify -carrier.")
	}

	carrier := readCarrier(*xCarrierFile)
	kind := carrierType(*xCarrierType, *xCarrierFile)

	res, err := veil.Extract(carrier, kind, *xPassword)
	if err != nil {
		log.Fatalln("Failed to extract payload:", err)
	}

	if res.ContentType == veil.ContentTypeText {
		os.Stdout.Write(res.Payload)
		os.Stdout.Write([]byte("\n"))
		return 0
	}

	// Drop any directory the hider recorded; only the base name is trusted.
	target := filepath.Join(*xOutputDir, filepath.Base(res.Filename))
	if err := os.WriteFile(target, res.Payload, 0o644); err != nil {
		log.Fatalln("Failed to write payload:", err)
	}
	log.Printf("Recovered %d bytes to %s\n", len(res.Payload), target)
	return 0
}
