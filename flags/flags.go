package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CRAEFT_ACCEPTOR"

// prefixEnvVars derives the environment variable names for a flag.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	TestDir = &cli.StringFlag{
		Name:     "testdir",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("TESTDIR"),
		Usage:    "Path to the directory holding test configs and their referenced files",
	}
	Compiler = &cli.StringFlag{
		Name:     "craeftc",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("CRAEFTC"),
		Usage:    "Path to the craeftc binary under test",
	}
	CC = &cli.StringFlag{
		Name:    "cc",
		Value:   "cc",
		EnvVars: prefixEnvVars("CC"),
		Usage:   "Path to the system C compiler used for harness compilation and linking",
	}
	CCFlags = &cli.StringSliceFlag{
		Name:    "cc-flags",
		EnvVars: prefixEnvVars("CC_FLAGS"),
		Usage:   "Extra flags passed to the C compiler when compiling harnesses (eg. '-std=c99')",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between suite runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory to store per-run failure logs",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output",
	}
	LogColor = &cli.BoolFlag{
		Name:    "log.color",
		Value:   false,
		EnvVars: prefixEnvVars("LOG_COLOR"),
		Usage:   "Color the log output if in terminal mode",
	}
)

var requiredFlags = []cli.Flag{
	TestDir,
	Compiler,
}

var optionalFlags = []cli.Flag{
	CC,
	CCFlags,
	RunInterval,
	LogDir,
	LogLevel,
	LogColor,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
