package main

import (
	"flag"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/veilforge/veil/cmd/veil/cmd"
)

type subcommand struct {
	flags *flag.FlagSet
	run   func() int
}

var subcommands = map[string]subcommand{
	cmd.HideCmd.Name():     {cmd.HideCmd, cmd.RunHideCmd},
	cmd.ExtractCmd.Name():  {cmd.ExtractCmd, cmd.RunExtractCmd},
	cmd.CapacityCmd.Name(): {cmd.CapacityCmd, cmd.RunCapacityCmd},
}

func main() {
	names := make([]string, 0, len(subcommands))
	for name := range subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(os.Args) < 2 {
		log.Fatalf("usage: veil <%s> [flags]", strings.Join(names, "|"))
	}
	sc, ok := subcommands[os.Args[1]]
	if !ok {
		log.Fatalf("unknown subcommand %q, expected one of: %s", os.Args[1], strings.Join(names, ", "))
	}

	sc.flags.Parse(os.Args[2:])
	os.Exit(sc.run())
}
