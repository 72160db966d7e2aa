package cli

import (
	"context"
	"log/slog"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/tool/flashcard"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

type toolList []interfaces.Tool

var tools = toolList{
	flashcard.New(),
}

func (x toolList) Flags() []cli.Flag {
	flags := []cli.Flag{}
	for _, tool := range x {
		flags = append(flags, tool.Flags()...)
	}
	return flags
}

func (x toolList) LogValue() slog.Value {
	var attrs []slog.Attr
	for _, tool := range x {
		attrs = append(attrs, slog.Any(tool.Name(), tool.LogValue()))
	}
	return slog.GroupValue(attrs...)
}

func (x toolList) ToolSets(ctx context.Context) ([]gollem.ToolSet, error) {
	toolSets := []gollem.ToolSet{}
	for _, tool := range x {
		if err := tool.Configure(ctx); err != nil {
			if err == errs.ErrActionUnavailable {
				continue
			}
			return nil, err
		}
		toolSets = append(toolSets, tool)
	}
	return toolSets, nil
}
