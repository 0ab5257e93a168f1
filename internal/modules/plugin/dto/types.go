package dto

import "time"

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type CommandInfo struct {
	ID              string
	Title           string
	Description     string
	InputSchemaJSON string
	TimeoutMS       int
}

type ExecuteInput struct {
	PluginName string
	CommandID  string
	InputJSON  string
	SessionID  string
	DataDir    string
	Cwd        string
	Env        map[string]string
}

type ExecuteOutput struct {
	PluginName string
	CommandID  string
	Stdout     string
	Stderr     string
	OutputJSON string
	ExitCode   int
}

type NotifyInput struct {
	SessionID    string
	TaskName     string
	Outcome      string
	Score        int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
	Distractions int
	IdleTime     time.Duration
}

type NotifyDelivery struct {
	PluginName   string
	Acknowledged bool
	Message      string
	Error        string
}

type NotifyOutput struct {
	Deliveries []NotifyDelivery
}
