package main

import (
	"flag"
	"os"

	"github.com/tablecraft/tablecraft/internal/conn"
	"github.com/tablecraft/tablecraft/internal/sheets"
	"github.com/tablecraft/tablecraft/pkg"
)

func main() {
	cwd, _ := os.Getwd()

	write_path := flag.String("db", cwd+"/tcraft.json", "path to save spreadsheet data")
	in_mem := flag.Bool("m", false, "don't persist spreadsheets")
	write_interval := flag.Int("i", 1000, "write interval in milliseconds")
	port := flag.Int("port", 7085, "listening port")
	should_log := flag.Bool("log", true, "enable logging")
	debug_logs := flag.Bool("dbg", false, "show debug logs")

	flag.Parse()

	if *should_log {
		if *debug_logs {
			pkg.SetLogLevel(pkg.LogLevelDebug)
		} else {
			pkg.SetLogLevel(pkg.LogLevelErrOnly)
		}
	} else {
		pkg.SetLogLevel(pkg.LogLevelNone)
	}

	store := sheets.NewStore(sheets.NewWriteSettings(*write_path, *in_mem, *write_interval))
	conn.Listen(store, *port)
}
