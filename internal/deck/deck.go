// Package deck はタロットカードの静的カタログとランダムドローを提供する。
package deck

import "math/rand/v2"

// Card はカタログ内の1枚のタロットカードを表す。
// Themeは補完プロバイダーへのプロンプト生成の文脈としてのみ使用する。
type Card struct {
	Name  string
	Theme string
}

// cards はカタログの固定8枚。起動ごとに同一の内容で、永続化はしない。
var cards = []Card{
	{Name: "The Moon", Theme: "illusion, intuition, the subconscious"},
	{Name: "The Star", Theme: "hope, renewal, spiritual guidance"},
	{Name: "Death", Theme: "transformation, endings, new beginnings"},
	{Name: "The Tower", Theme: "sudden change, upheaval, revelation"},
	{Name: "The Hanged Man", Theme: "surrender, new perspective, letting go"},
	{Name: "The Devil", Theme: "temptation, bondage, materialism"},
	{Name: "The High Priestess", Theme: "mystery, intuition, the divine feminine"},
	{Name: "The Magician", Theme: "manifestation, power, skill"},
}

// imageTags はカード名から画像タグへの固定の対応表。
// アート素材が3枚しかないため、複数のカードが同じタグを共有する。
// これは既存のプロダクト挙動であり、不具合ではない。
var imageTags = map[string]string{
	"The Moon":           "moon",
	"The Star":           "star",
	"Death":              "death",
	"The Tower":          "moon",
	"The Hanged Man":     "star",
	"The Devil":          "death",
	"The High Priestess": "moon",
	"The Magician":       "star",
}

// defaultImageTag は対応表にないカード名のフォールバック。
const defaultImageTag = "moon"

// RNG は乱数生成の抽象。テストでドローを固定するために差し替える。
type RNG interface {
	// IntN は [0, n) の非負の乱数を返す。
	IntN(n int) int
}

// Deck はカタログからの一様ランダムドローを提供する。
type Deck struct {
	rng RNG
}

// New はDeckを生成する。rngがnilの場合はmath/rand/v2のグローバル乱数を使用する。
func New(rng RNG) *Deck {
	if rng == nil {
		rng = stdRNG{}
	}
	return &Deck{rng: rng}
}

// stdRNG はmath/rand/v2によるRNG実装。
type stdRNG struct{}

func (stdRNG) IntN(n int) int { return rand.IntN(n) }

// Draw はカタログから一様ランダムに1枚選ぶ。カタログは空にならないため失敗しない。
func (d *Deck) Draw() Card {
	return cards[d.rng.IntN(len(cards))]
}

// Cards はカタログ全体のコピーを返す。
func Cards() []Card {
	result := make([]Card, len(cards))
	copy(result, cards)
	return result
}

// ImageTag はカードの表示名を画像タグに変換する。
// 対応表にない名前は "moon" にフォールバックする。
func ImageTag(cardName string) string {
	if tag, ok := imageTags[cardName]; ok {
		return tag
	}
	return defaultImageTag
}
