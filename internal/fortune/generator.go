// Package fortune は占い生成と占い履歴のドメインロジックを提供する。
package fortune

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/hitoshi/uranai/internal/deck"
	"github.com/hitoshi/uranai/internal/llm"
	"github.com/hitoshi/uranai/internal/model"
)

// fallbackFortuneText はプロバイダーが空の補完を返した場合の代替テキスト。
const fallbackFortuneText = "The spirits remain silent... try again."

// Result は1回の占い生成の結果を表す。
type Result struct {
	CardName    string
	FortuneText string
	CardImage   string
}

// Generator はカードのドローと補完プロバイダー呼び出しを組み合わせて占いを生成する。
// 永続化は行わない。プロバイダーの失敗はリトライせずGENERATION_FAILEDに集約する。
type Generator struct {
	deck      *deck.Deck
	completer llm.Completer
	timeout   time.Duration
	sanitizer Sanitizer
}

// Sanitizer は生成テキストからマークアップを除去するインターフェース。
type Sanitizer interface {
	Sanitize(s string) string
}

// NewGenerator はGeneratorを生成する。
// timeoutはプロバイダー呼び出し全体に課す上限。ハングしたプロバイダーで
// リクエストを無期限に待たせない。
func NewGenerator(d *deck.Deck, completer llm.Completer, timeout time.Duration, sanitizer Sanitizer) *Generator {
	return &Generator{
		deck:      d,
		completer: completer,
		timeout:   timeout,
		sanitizer: sanitizer,
	}
}

// Generate はカードを1枚ドローし、そのカードの占い文を生成して返す。
// プロバイダーの失敗（タイムアウト含む）はログに詳細を残し、
// クライアント向けにはGENERATION_FAILEDのみを返す。
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	card := g.deck.Draw()
	prompt := buildPrompt(card)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("failed to consult the spirits",
			slog.String("card", card.Name),
			slog.String("error", err.Error()),
		)
		return nil, model.NewGenerationError()
	}

	if text == "" {
		text = fallbackFortuneText
	}

	// 生成テキストは信頼しない。マークアップを除去してから保存・返却する。
	if g.sanitizer != nil {
		text = html.UnescapeString(g.sanitizer.Sanitize(text))
	}

	return &Result{
		CardName:    card.Name,
		FortuneText: text,
		CardImage:   deck.ImageTag(card.Name),
	}, nil
}

// buildPrompt はカード名とテーマを織り込んだ占い文生成の指示文を組み立てる。
func buildPrompt(card deck.Card) string {
	return fmt.Sprintf(`You are a mystical fortune teller conducting a tarot reading on Halloween night.
The card drawn is %q, which represents %s.

Generate a haunting, atmospheric fortune reading that:
- Is 3-4 sentences long
- Has a mysterious, slightly ominous tone fitting for Halloween
- Incorporates the card's themes in a creative way
- Feels personal and prophetic
- Uses evocative, poetic language
- Could apply to anyone's life but feels specific

Do not use generic phrases. Make it feel like the spirits are truly speaking through you.
Only return the fortune text itself, nothing else.`, card.Name, card.Theme)
}
