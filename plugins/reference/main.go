// Command reference is a sample focuspulse plugin. It echoes command input,
// reports a short digest of its input and acknowledges finished sessions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-plugin"

	pluginrpc "focuspulse/internal/modules/plugin/adapter/out/rpc"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"command", "notify"},
	}, nil
}

func (s *server) ListCommands(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.ListCommandsResponse, error) {
	return &pluginrpc.ListCommandsResponse{Commands: []pluginrpc.CommandDescriptor{
		{ID: "echo", Title: "Echo", Description: "Echoes provided input", TimeoutMS: 2000},
		{ID: "keys", Title: "Keys", Description: "Lists the top-level keys of the input object", TimeoutMS: 2000},
	}}, nil
}

func (s *server) Execute(_ context.Context, in *pluginrpc.ExecuteRequest) (*pluginrpc.ExecuteResponse, error) {
	switch in.CommandID {
	case "echo":
		if strings.TrimSpace(in.InputJSON) == "" {
			return &pluginrpc.ExecuteResponse{Stdout: "echo", OutputJSON: `{"echo":""}`}, nil
		}
		return &pluginrpc.ExecuteResponse{Stdout: in.InputJSON, OutputJSON: fmt.Sprintf(`{"echo":%q}`, in.InputJSON)}, nil
	case "keys":
		payload := map[string]any{}
		if strings.TrimSpace(in.InputJSON) != "" {
			if err := json.Unmarshal([]byte(in.InputJSON), &payload); err != nil {
				return &pluginrpc.ExecuteResponse{Stderr: err.Error(), ExitCode: 1}, nil
			}
		}
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		raw, _ := json.Marshal(map[string]any{"session_id": in.Context.SessionID, "keys": keys})
		return &pluginrpc.ExecuteResponse{Stdout: strings.Join(keys, "\n"), OutputJSON: string(raw)}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", in.CommandID)
	}
}

func (s *server) Notify(_ context.Context, in *pluginrpc.SessionCompleted) (*pluginrpc.NotifyResponse, error) {
	message := fmt.Sprintf("%s %s: score %d, %d distractions", in.TaskName, in.Outcome, in.Score, in.Distractions)
	fmt.Fprintln(os.Stderr, message)
	return &pluginrpc.NotifyResponse{Acknowledged: true, Message: message}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
