package output

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var slugSepRe = regexp.MustCompile(`[^a-z0-9]+`)

func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("输出目录为空")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败（%s）：%w", dir, err)
	}
	return nil
}

// Slug turns a title into a lowercase ASCII file stem.
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		s = strings.ToLower(title)
	}
	s = strings.Trim(slugSepRe.ReplaceAllString(s, "-"), "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		return "song"
	}
	return s
}

// NextPath returns dir/<slug><ext>, or dir/<slug>_<random><ext> when that is
// taken.
func NextPath(dir, title, ext string, randSrc io.Reader) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	stem := Slug(title)
	p := filepath.Join(dir, stem+ext)
	if !exists(p) {
		return p, nil
	}
	if randSrc == nil {
		randSrc = rand.Reader
	}
	for i := 0; i < 1000; i++ {
		id, err := randomID(6, randSrc)
		if err != nil {
			return "", err
		}
		p = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, id, ext))
		if !exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("尝试多次仍无法生成不冲突文件名")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func randomID(n int, randSrc io.Reader) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(randSrc, buf); err != nil {
		return "", fmt.Errorf("读取随机数失败：%w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
