package text

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"plain latin", "fresh apple", "fresh apple"},
		{"punctuation stripped", "apple, juice! (cold)", "apple juice cold"},
		{"cjk preserved", "苹果汁", "苹果汁"},
		{"cjk with punctuation", "苹果，汁！", "苹果 汁"},
		{"mixed scripts", "iPhone-15 手机", "iPhone 15 手机"},
		{"whitespace collapsed", "a   b\t\tc", "a b c"},
		{"leading trailing trimmed", "  apple  ", "apple"},
		{"underscore is a word char", "stock_code", "stock_code"},
		{"accented latin preserved", "café au lait", "café au lait"},
		{"kana preserved", "りんごジュース", "りんごジュース"},
		{"cyrillic preserved", "яблоко, сок", "яблоко сок"},
		{"unicode digits preserved", "第１２货架", "第１２货架"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.in); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
