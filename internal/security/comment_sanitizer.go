// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizerService はプルリクエストコメントの本文をサニタイズし、
// ダッシュボードが後でレンダリングするコンテンツからXSSリスクを除去する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// Markdownと共存できる安全なインラインタグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizerService はコメント本文のサニタイズ機能のインターフェースを定義する。
// コメント投稿のプロキシ前に使用される。
type CommentSanitizerService interface {
	// Sanitize はコメント本文から危険なHTMLを除去して返す。
	// script, iframe, styleタグおよびon*イベント属性を除去し、
	// Markdownで一般的なインラインタグ（code, pre, strong, em等）のみを通過させる。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(body string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, ul, ol, li, blockquote, pre, code, strong, em, del
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - 属性は一切許可しない（GitHub側がMarkdownとしてレンダリングするため）
func NewCommentSanitizer() *commentSanitizer {
	p := bluemonday.NewPolicy()

	// 許可リストに含めないタグ・属性は自動的に除去される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del",
	)

	return &commentSanitizer{
		policy: p,
	}
}

// Sanitize はコメント本文から危険なHTMLを除去して返す。
func (s *commentSanitizer) Sanitize(body string) string {
	return s.policy.Sanitize(body)
}

// compile-time interface check
var _ CommentSanitizerService = (*commentSanitizer)(nil)
