package pkg

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

var (
	info_logger  = log.New(os.Stdout, "INFO: ", log.Lshortfile|log.LstdFlags)
	warn_logger  = log.New(os.Stdout, "WARN: ", log.Lshortfile|log.LstdFlags)
	debug_logger = log.New(os.Stdout, "DEBUG: ", log.Lshortfile|log.LstdFlags)
	error_logger = log.New(os.Stderr, "ERROR: ", log.Lshortfile|log.LstdFlags)
	fatal_logger = log.New(os.Stderr, "FATAL: ", log.Lshortfile|log.LstdFlags)
)

var (
	out_loggers = []*log.Logger{info_logger, warn_logger, debug_logger}
	err_loggers = []*log.Logger{error_logger, fatal_logger}
)

func SetLogLevel(level LogLevel) {
	switch level {
	case LogLevelNone:
		for _, l := range out_loggers {
			l.SetOutput(io.Discard)
		}
		for _, l := range err_loggers {
			l.SetOutput(io.Discard)
		}
	case LogLevelErrOnly:
		for _, l := range out_loggers {
			l.SetOutput(io.Discard)
		}
		for _, l := range err_loggers {
			l.SetOutput(os.Stderr)
		}
	case LogLevelDebug:
		for _, l := range out_loggers {
			l.SetOutput(os.Stdout)
		}
		for _, l := range err_loggers {
			l.SetOutput(os.Stderr)
		}
	}
}

var (
	InfoLog  = info_logger.Println
	WarnLog  = warn_logger.Println
	DebugLog = debug_logger.Println
	ErrorLog = error_logger.Println
	FatalLog = fatal_logger.Fatalln
)
