package methods

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText 把上传的文本转为 UTF-8。已是 UTF-8 的内容只去掉 BOM，
// 其它编码用 chardet 检测，识别不了时按 GB18030 处理。
func DecodeText(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}

	enc := lookupEncoding(detectCharset(raw))
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return out, nil
}

func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

func lookupEncoding(charset string) encoding.Encoding {
	if charset == "" {
		return simplifiedchinese.GB18030
	}
	for _, name := range []string{charset, strings.ReplaceAll(charset, "-", "")} {
		if enc, err := htmlindex.Get(name); err == nil {
			return enc
		}
	}
	return simplifiedchinese.GB18030
}
