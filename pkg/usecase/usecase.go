package usecase

import (
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/m-mizutani/gollem"
)

type UseCases struct {
	repository interfaces.Repository
	llmClient  gollem.LLMClient
	tools      []gollem.ToolSet
	observer   interfaces.SessionObserver

	loopLimit int
}

const defaultLoopLimit = 16

type Option func(*UseCases)

func WithRepository(repo interfaces.Repository) Option {
	return func(u *UseCases) {
		u.repository = repo
	}
}

func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(u *UseCases) {
		u.llmClient = llmClient
	}
}

func WithTools(tools ...gollem.ToolSet) Option {
	return func(u *UseCases) {
		u.tools = append(u.tools, tools...)
	}
}

func WithSessionObserver(observer interfaces.SessionObserver) Option {
	return func(u *UseCases) {
		u.observer = observer
	}
}

func WithLoopLimit(limit int) Option {
	return func(u *UseCases) {
		u.loopLimit = limit
	}
}

func New(opts ...Option) *UseCases {
	uc := &UseCases{
		loopLimit: defaultLoopLimit,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}
