package conversation

import (
	"calmbot/app/config"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

func createClient(cfg config.Backend) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return openai.NewClientWithConfig(clientConfig)
}
