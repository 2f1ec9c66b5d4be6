package cmd

import (
	"flag"
	"log"
	"os"

	"github.com/veilforge/veil"
)

var (
	HideCmd       = flag.NewFlagSet("hide", flag.ExitOnError)
	hCarrierFile  = HideCmd.String("carrier", "", "path to the carrier file")
	hCarrierType  = HideCmd.String("type", "", "carrier type (image, audio, video, document); inferred from the extension when empty")
	hPayloadFile  = HideCmd.String("payload", "", "path to the payload file")
	hMessage      = HideCmd.String("message", "", "text message to hide instead of -payload")
	hOutputFile   = HideCmd.String("output", "", "path to the output file")
	hPassword     = HideCmd.String("password", "", "password; empty stores the payload unencrypted")
	hRedundancy   = HideCmd.Int("redundancy", 0, "bit replication factor; 0 selects automatically")
	hDataShards   = HideCmd.Int("data-shards", 0, "Reed-Solomon data shards; 0 uses the default")
	hParityShards = HideCmd.Int("parity-shards", 0, "Reed-Solomon parity shards; 0 disables armor")
	hConfigFile   = HideCmd.String("config", "", "path to a TOML file with option defaults")
)

func RunHideCmd() int {
	if *hCarrierFile == "" || *hOutputFile == "" {
		log.Fatalln("You must specify -carrier and -output.")
	}
	isPayload := *hPayloadFile != ""
	isMessage := *hMessage != ""
	if isPayload == isMessage {
		log.Fatalln("You must specify either -payload or -message.")
	}

	cfg := loadConfig(*hConfigFile)
	opts := veil.Options{
		Redundancy:   *hRedundancy,
		DataShards:   *hDataShards,
		ParityShards: *hParityShards,
	}
	if opts.Redundancy == 0 {
		opts.Redundancy = cfg.Redundancy
	}
	if opts.DataShards == 0 {
		opts.DataShards = cfg.DataShards
	}
	if opts.ParityShards == 0 {
		opts.ParityShards = cfg.ParityShards
	}

	payload := []byte(*hMessage)
	filename := ""
	if isPayload {
		data, err := os.ReadFile(*hPayloadFile)
		if err != nil {
			log.Fatalln("Failed to read payload:", err)
		}
		payload = data
		filename = *hPayloadFile
	}

	carrier := readCarrier(*hCarrierFile)
	kind := carrierType(*hCarrierType, *hCarrierFile)

	log.Printf("Hiding %d bytes in %s carrier...", len(payload), kind)
	out, err := veil.Hide(carrier, kind, payload, filename, *hPassword, opts)
	if err != nil {
		log.Fatalln("Failed to hide payload:", err)
	}

	if err := os.WriteFile(*hOutputFile, out, 0o644); err != nil {
		log.Fatalln("Failed to write output:", err)
	}
	log.Println("Done.")
	return 0
}
