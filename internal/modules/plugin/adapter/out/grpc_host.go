package out

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	pluginrpc "focuspulse/internal/modules/plugin/adapter/out/rpc"
	"focuspulse/internal/modules/plugin/domain"
	pluginout "focuspulse/internal/modules/plugin/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches a plugin process per call. Plugins are short-lived
// helpers, so nothing is pooled.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) pluginout.Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCHost{logger: logger}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	var meta *pluginrpc.Metadata
	err := h.call(ctx, manifest, defaultCallTimeout, func(callCtx context.Context, client pluginrpc.FocusPluginClient) error {
		var err error
		meta, err = client.GetMetadata(callCtx)
		return err
	})
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) ListCommands(ctx context.Context, manifest domain.Manifest) ([]domain.CommandDescriptor, error) {
	var response *pluginrpc.ListCommandsResponse
	err := h.call(ctx, manifest, defaultCallTimeout, func(callCtx context.Context, client pluginrpc.FocusPluginClient) error {
		var err error
		response, err = client.ListCommands(callCtx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	out := make([]domain.CommandDescriptor, 0, len(response.Commands))
	for _, cmd := range response.Commands {
		out = append(out, domain.CommandDescriptor{
			ID:              cmd.ID,
			Title:           cmd.Title,
			Description:     cmd.Description,
			InputSchemaJSON: cmd.InputSchemaJSON,
			TimeoutMS:       int(cmd.TimeoutMS),
		})
	}
	return out, nil
}

func (h *GRPCHost) Execute(ctx context.Context, manifest domain.Manifest, input domain.ExecuteRequest) (domain.ExecuteResult, error) {
	timeout := input.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	var response *pluginrpc.ExecuteResponse
	err := h.call(ctx, manifest, timeout, func(callCtx context.Context, client pluginrpc.FocusPluginClient) error {
		var err error
		response, err = client.Execute(callCtx, &pluginrpc.ExecuteRequest{
			CommandID: input.CommandID,
			InputJSON: input.InputJSON,
			Context: pluginrpc.ExecuteContext{
				DataDir:   input.Context.DataDir,
				SessionID: input.Context.SessionID,
				Cwd:       input.Context.Cwd,
				Env:       input.Context.Env,
			},
		})
		return err
	})
	if err != nil {
		return domain.ExecuteResult{}, fmt.Errorf("execute command %s: %w", input.CommandID, err)
	}
	return domain.ExecuteResult{
		Stdout:     response.Stdout,
		Stderr:     response.Stderr,
		OutputJSON: response.OutputJSON,
		ExitCode:   int(response.ExitCode),
	}, nil
}

func (h *GRPCHost) Notify(ctx context.Context, manifest domain.Manifest, n domain.Notification) (domain.NotifyResult, error) {
	var response *pluginrpc.NotifyResponse
	err := h.call(ctx, manifest, defaultCallTimeout, func(callCtx context.Context, client pluginrpc.FocusPluginClient) error {
		var err error
		response, err = client.Notify(callCtx, &pluginrpc.SessionCompleted{
			SessionID:       n.SessionID,
			TaskName:        n.TaskName,
			Outcome:         n.Outcome,
			Score:           int32(n.Score),
			StartedAt:       n.StartedAt.Format(time.RFC3339),
			EndedAt:         n.EndedAt.Format(time.RFC3339),
			DurationSeconds: int64(n.Duration / time.Second),
			Distractions:    int32(n.Distractions),
			IdleSeconds:     int64(n.IdleTime / time.Second),
		})
		return err
	})
	if err != nil {
		return domain.NotifyResult{}, fmt.Errorf("notify %s: %w", manifest.Name, err)
	}
	return domain.NotifyResult{Acknowledged: response.Acknowledged, Message: response.Message}, nil
}

// call starts the plugin, runs fn under a deadline and kills the process.
func (h *GRPCHost) call(ctx context.Context, manifest domain.Manifest, timeout time.Duration, fn func(context.Context, pluginrpc.FocusPluginClient) error) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, timeout)
	defer cancel()
	if err := fn(callCtx, client); err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return err
	}
	return nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (pluginrpc.FocusPluginClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(pluginrpc.FocusPluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
