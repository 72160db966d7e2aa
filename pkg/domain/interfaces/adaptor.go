package interfaces

import (
	"context"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/opaq"
)

type PolicyClient interface {
	Query(context.Context, string, any, any, ...opaq.QueryOption) error
	Sources() map[string]string
}

type LLMClient interface {
	gollem.LLMClient
}
