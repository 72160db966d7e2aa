package usecase

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
)

var FilterForModel = filterForModel

func (x *UseCases) MergeHistory(ctx context.Context, req *ChatRequest) []chat.UIMessage {
	return x.mergeHistory(ctx, req)
}
