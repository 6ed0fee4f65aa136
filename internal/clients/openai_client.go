package clients

import (
	"log/slog"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	aiClientInstance *AIClient
	aiClientOnce     sync.Once
)

type AIClient struct {
	Client *openai.Client
}

func GetAIClient(apiKey string) *AIClient {
	aiClientOnce.Do(func() {
		aiClientInstance = &AIClient{
			Client: openai.NewClient(option.WithAPIKey(apiKey)),
		}
		slog.Info("[AIClient] OpenAI client initialized")
	})
	return aiClientInstance
}
