package ai

import (
	"context"
	"fmt"
)

type Translation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Lang        string `json:"lang"`
}

type Translator interface {
	Translate(ctx context.Context, title, description, lang string) (Translation, error)
}

func (c *Client) Translate(ctx context.Context, title, description, lang string) (Translation, error) {
	prompt := fmt.Sprintf(`Translate the title and description of this post into the language with ISO 639-1 code %q.
Keep names, hashtags and emoji unchanged. Do not add anything.

TITLE: %s
DESCRIPTION: %s

Answer strictly as JSON: {"title": "...", "description": "..."}`, lang, title, description)

	var t Translation
	if err := c.generate(ctx, prompt, &t); err != nil {
		return Translation{}, err
	}
	t.Lang = lang
	return t, nil
}
