package employee

import (
	"regexp"
	"strings"
)

var emailTokensPattern = regexp.MustCompile(`([a-zA-Z]+)\.([a-zA-Z]+)(\.\d+)?@.*`)

// EmailNeedsUpdate は既存のメールアドレスに埋め込まれた名・姓が新しい値と異なるかを返します。
// アドレスが形式に一致しない場合は変更ありとみなします。
func EmailNeedsUpdate(oldEmail, newFirstName, newFirstSurname string) bool {
	name, surname := "", ""
	if m := emailTokensPattern.FindStringSubmatch(oldEmail); m != nil {
		name, surname = m[1], m[2]
	}
	return !strings.EqualFold(name, newFirstName) || !strings.EqualFold(surname, newFirstSurname)
}

// Changed は保存済みトークンと新しい名・姓から作られるトークンが異なるかを返します。
// トークンが保存されていないレコードではメールアドレスの解析にフォールバックします。
func (t EmailTokens) Changed(email, newFirstName, newFirstSurname string) bool {
	if t.IsZero() {
		return EmailNeedsUpdate(email, newFirstName, newFirstSurname)
	}
	return t != TokensFor(newFirstName, newFirstSurname)
}
