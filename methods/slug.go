package methods

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Slug 生成导出文件名，中文转拼音，其余非字母数字字符替换为 -
func Slug(name string) string {
	a := pinyin.NewArgs()
	a.Style = pinyin.NORMAL
	a.Heteronym = false

	var b strings.Builder
	dash, han := false, false
	write := func(s string) {
		b.WriteString(s)
		dash = false
	}
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			py := pinyin.Pinyin(string(r), a)
			if len(py) > 0 && len(py[0]) > 0 {
				if b.Len() > 0 && !dash {
					b.WriteByte('-')
				}
				write(py[0][0])
				han = true
			}
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if han && !dash {
				b.WriteByte('-')
			}
			han = false
			write(string(unicode.ToLower(r)))
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
			han = false
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "dataset"
	}
	return out
}
