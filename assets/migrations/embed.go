// Package migrations はスキーマ定義の SQL を埋め込みます。
package migrations

import "embed"

// FS は golang-migrate の iofs ソースとして読み込む SQL ファイル群です。
//
//go:embed *.sql
var FS embed.FS
