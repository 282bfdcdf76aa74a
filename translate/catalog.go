package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Keys are the en-US formats. English maps every key to itself so that
// it is always the first catalog language and the fallback match.
var catalog = map[string]string{
	"invalid opcode":                         "無効なオペコード",
	"OP(%d)":                                 "OP(%d)",
	"alu not configured":                     "ALU が未設定です",
	"alu already configured":                 "ALU は設定済みです",
	"register file not created":              "レジスタファイルが未作成です",
	"register file already created":          "レジスタファイルは作成済みです",
	"latency must be a non-negative number":  "レイテンシは 0 以上の数値である必要があります",
	"register file size must be at least 1":  "レジスタファイルのサイズは 1 以上である必要があります",
	"address out of range":                   "アドレスが範囲外です",
	"invalid address r%d (size %d)":          "無効なアドレス r%d (サイズ %d)",
	"benchmark %v: r%d = %d, want %d":        "ベンチマーク %v: r%d = %d (期待値 %d)",
	"%v: %d steps, %.1fs virtual, %v wall":   "%v: %d ステップ, 仮想 %.1f 秒, 実時間 %v",
	"PASS":                                   "成功",
	"FAIL":                                   "失敗",
}

func registerCatalog() {
	for key, ja := range catalog {
		_ = message.SetString(language.English, key, key)
		_ = message.SetString(language.Japanese, key, ja)
	}
}
