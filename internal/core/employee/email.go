package employee

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExistsFunc は候補のメールアドレスが既に使われているかを返します。
type ExistsFunc func(ctx context.Context, email string) (bool, error)

// Address は生成されたメールアドレスと、その生成に使った情報です。
type Address struct {
	Email   string
	Tokens  EmailTokens
	Domain  string
	Counter int
}

// Synthesizer は名・姓・国から社用メールアドレスを生成します。
// 同じ基底アドレスを並行して生成すると双方が同じ候補を空きと判断し得るため、
// 最終的な一意性は永続化時の一意制約で担保します。
type Synthesizer struct {
	domains       map[string]string
	maxCollisions int
}

// NewSynthesizer は国名 (大文字小文字は区別しない) からドメインへの対応表で Synthesizer を生成します。
// maxCollisions が 0 の場合、連番の探索は無制限です。
func NewSynthesizer(domains map[string]string, maxCollisions int) *Synthesizer {
	normalized := make(map[string]string, len(domains))
	for country, domain := range domains {
		normalized[strings.ToUpper(strings.TrimSpace(country))] = domain
	}
	if maxCollisions < 0 {
		maxCollisions = 0
	}
	return &Synthesizer{domains: normalized, maxCollisions: maxCollisions}
}

// Domain は国名に対応するドメインを返します。
func (s *Synthesizer) Domain(country string) (string, error) {
	domain, ok := s.domains[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return "", &UnsupportedCountryError{Country: country}
	}
	return domain, nil
}

// Synthesize は衝突しないメールアドレスを生成します。
// name.surname@domain が使われていれば name.surname.1@domain, name.surname.2@domain ... と順に試します。
func (s *Synthesizer) Synthesize(ctx context.Context, firstName, firstSurname, country string, exists ExistsFunc) (Address, error) {
	domain, err := s.Domain(country)
	if err != nil {
		return Address{}, err
	}

	tokens := TokensFor(firstName, firstSurname)
	base := tokens.Name + "." + tokens.Surname

	for counter := 0; ; counter++ {
		if s.maxCollisions > 0 && counter > s.maxCollisions {
			return Address{}, fmt.Errorf("%w: %s@%s", ErrEmailSpaceExhausted, base, domain)
		}

		local := base
		if counter > 0 {
			local = base + "." + strconv.Itoa(counter)
		}
		candidate := local + "@" + domain

		taken, err := exists(ctx, candidate)
		if err != nil {
			return Address{}, fmt.Errorf("check email %s: %w", candidate, err)
		}
		if !taken {
			return Address{Email: candidate, Tokens: tokens, Domain: domain, Counter: counter}, nil
		}
	}
}

// TokensFor はメールアドレスのローカル部に使うトークンを返します。
// 名は空白区切りの先頭要素、姓は空白とハイフンを取り除いたものを小文字化します。
func TokensFor(firstName, firstSurname string) EmailTokens {
	name := ""
	if fields := strings.Fields(firstName); len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}

	surname := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, firstSurname)

	return EmailTokens{Name: name, Surname: surname}
}

// DomainOf はメールアドレスのドメイン部を返します。
func DomainOf(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
