package main

import "time"

// Flag structs decouple cobra from logic for testing.

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// RunFlags holds overrides for the run command. Zero values mean "use the
// config file / defaults".
type RunFlags struct {
	PollInterval time.Duration
	ProbeTimeout time.Duration
	StopWait     time.Duration
	Listen       string
	LogLevel     string
	JournalDSN   string
}

// CheckFlags holds flags for the one-shot check command.
type CheckFlags struct {
	Timeout time.Duration
}
