package generate

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates prompt size with the cl100k_base encoding.
// The estimate is informational; the endpoint's model uses its own
// tokenizer.
type TokenCounter struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewTokenCounter creates a counter. The codec loads on first use.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count returns the token count of text.
func (c *TokenCounter) Count(text string) (int, error) {
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if c.err != nil {
		return 0, fmt.Errorf("load tokenizer: %w", c.err)
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	return len(ids), nil
}

// CountPayload sums the token counts of all message contents.
func (c *TokenCounter) CountPayload(p *Payload) (int, error) {
	total := 0
	for _, m := range p.Messages {
		n, err := c.Count(m.Content)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
