package gemini

import (
	"github.com/digitalkookiehub/hireez/internal/llm"
	"github.com/digitalkookiehub/hireez/internal/prompts"
)

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider("gemini", func() (llm.Engine, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		promptManager, err := prompts.NewManager()
		if err != nil {
			return nil, err
		}
		return NewClient(config, promptManager)
	})
}
