package logging

import (
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GetSugar builds a JSON logger named after the calling component. Output
// goes to stderr, keeping stdout for command results, and to logFile when set.
func GetSugar(name string, level string, logFile string) *zap.SugaredLogger {
	rawJSON := []byte(`{
	  "level": "info",
	  "encoding": "json",
	  "outputPaths": ["stderr"],
	  "errorOutputPaths": ["stderr"],
	  "encoderConfig": {
	    "messageKey": "message",
	    "levelKey": "level",
	    "nameKey": "logger",
	    "timeKey": "time",
	    "levelEncoder": "lowercase",
	    "timeEncoder": "iso8601"
	  }
	}`)
	var cfg zap.Config
	if err := json.Unmarshal(rawJSON, &cfg); err != nil {
		panic(err)
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}

	logger := zap.Must(cfg.Build())
	return logger.Named(name).Sugar()
}

func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
