package cmd

import (
	"flag"
	"log"

	"github.com/veilforge/veil"
	"github.com/veilforge/veil/util"
)

var (
	CapacityCmd  = flag.NewFlagSet("capacity", flag.ExitOnError)
	cCarrierFile = CapacityCmd.String("carrier", "", "path to the carrier file")
	cCarrierType = CapacityCmd.String("type", "", "carrier type (image, audio, video, document); inferred from the extension when empty")
)

func RunCapacityCmd() int {
	if *cCarrierFile == "" {
		log.Fatalln("You must specify -carrier.")
	}

	carrier := readCarrier(*cCarrierFile)
	kind := carrierType(*cCarrierType, *cCarrierFile)

	bits, err := veil.Capacity(carrier, kind)
	if err != nil {
		log.Fatalln("Failed to inspect carrier:", err)
	}

	log.Printf("%s carrier holds %d bits (%s) before framing overhead\n",
		kind, bits, util.FormatSize(int64(bits/8)))
	return 0
}
