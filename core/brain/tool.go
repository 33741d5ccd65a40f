package brain

import (
	"context"
	"time"

	"github.com/relayvoice/relay-core/core/tools"
)

const askTimeout = 20 * time.Second

type askParams struct {
	Query string `json:"query" jsonschema:"description=The full question or request to reason about"`
}

// AskTool wraps the client as the ask_brain tool. Successful answers carry a
// script meant to be narrated verbatim rather than paraphrased by the
// listening session.
func AskTool(client *Client) tools.Tool {
	return tools.New("ask_brain",
		"Answer a complex question or request using a stronger reasoning model. Returns a script to be spoken verbatim.",
		func(ctx context.Context, params askParams) (map[string]any, error) {
			answer, err := client.Ask(ctx, params.Query)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"ok":             true,
				"script":         answer.Script,
				"speak_verbatim": true,
			}, nil
		},
		tools.WithTimeout(askTimeout),
		tools.WithSpokenResult(func(payload map[string]any) string {
			script, _ := payload["script"].(string)
			return script
		}),
	)
}
