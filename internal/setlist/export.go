package setlist

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"lyricsheet/internal/song"
)

var Formats = []string{"json", "txt", "csv"}

// Export renders a setlist with its resolved songs.
func Export(sl Setlist, all []song.Song, format string) ([]byte, error) {
	songs := Songs(sl, all)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		payload := struct {
			Setlist Setlist     `json:"setlist"`
			Songs   []song.Song `json:"songs"`
		}{Setlist: sl, Songs: songs}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("编码歌单失败：%w", err)
		}
		return out, nil
	case "txt":
		titles := make([]string, 0, len(songs))
		for _, sg := range songs {
			titles = append(titles, sg.Title)
		}
		return []byte(strings.Join(titles, "\n")), nil
	case "csv":
		buf := &bytes.Buffer{}
		w := csv.NewWriter(buf)
		_ = w.Write([]string{"Title", "Lyrics"})
		for _, sg := range songs {
			_ = w.Write([]string{sg.Title, sg.Lyrics})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("写入 CSV 失败：%w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("不支持的导出格式：%s（可选 %s）", format, strings.Join(Formats, " / "))
	}
}
