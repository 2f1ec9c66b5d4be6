package cmd

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/ioprogress"

	"github.com/veilforge/veil"
)

// Config carries option defaults loaded from a TOML file. Flags given on the
// command line win over it.
type Config struct {
	Redundancy   int `toml:"redundancy"`
	DataShards   int `toml:"data_shards"`
	ParityShards int `toml:"parity_shards"`
}

func loadConfig(path string) Config {
	var c Config
	if path == "" {
		return c
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		log.Fatalln("Failed to load config:", err)
	}
	return c
}

// readCarrier slurps the carrier file, drawing a progress bar on stderr.
func readCarrier(path string) []byte {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalln("Failed to open carrier:", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		log.Fatalln("Failed to stat carrier:", err)
	}

	data, err := io.ReadAll(&ioprogress.Reader{
		Reader:   file,
		Size:     stat.Size(),
		DrawFunc: ioprogress.DrawTerminalf(os.Stderr, ioprogress.DrawTextFormatBytes),
	})
	if err != nil {
		log.Fatalln("Failed to read carrier:", err)
	}
	return data
}

// carrierType resolves the carrier type from an explicit flag value, falling
// back to the file extension.
func carrierType(explicit, path string) veil.CarrierType {
	if explicit != "" {
		return veil.CarrierType(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return veil.Image
	case ".wav", ".mp3":
		return veil.Audio
	case ".avi":
		return veil.Video
	default:
		return veil.Document
	}
}
