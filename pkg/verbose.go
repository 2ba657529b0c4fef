package dupfind

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var debugFlags map[string]bool

// SetupLogger builds the diagnostic logger. Verbosity 0 logs warnings only, 1 adds
// info, 2 debug and 3 or more trace with caller information. The transcript never
// goes through this logger.
func SetupLogger(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity == 1:
		level = zerolog.InfoLevel
	case verbosity == 2:
		level = zerolog.DebugLevel
	case verbosity >= 3:
		level = zerolog.TraceLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}

	logger := zerolog.New(consoleWriter).Level(level).With().Timestamp().Logger()
	if verbosity >= 3 {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("scan,hash") and key:value format ("scan:true,hash:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				flagValue = false
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)] || debugFlags["all"]
}
