package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		k, v, ok := parseEnvLine(s.Text())
		if ok {
			out[k] = v
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("读取 .env 失败：%w", err)
	}
	return out, nil
}

func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	i := strings.Index(line, "=")
	if i <= 0 {
		return "", "", false
	}
	k := strings.TrimSpace(line[:i])
	v := strings.Trim(strings.TrimSpace(line[i+1:]), "\"'")
	return k, v, k != ""
}

// LookupKey reads name from the process environment, then from the .env file.
func LookupKey(envPath, name string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	vals, err := LoadEnvFile(envPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(vals[name])
}

func UpsertEnvVar(path, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("env key 为空")
	}
	value = strings.TrimSpace(value)
	var lines []string
	if raw, err := os.ReadFile(path); err == nil {
		text := strings.TrimRight(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
		if text != "" {
			lines = strings.Split(text, "\n")
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("读取 .env 失败：%w", err)
	}

	found := false
	for i, line := range lines {
		if k, _, ok := parseEnvLine(line); ok && k == key {
			lines[i] = key + "=" + value
			found = true
		}
	}
	if !found {
		lines = append(lines, key+"="+value)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建 .env 目录失败：%w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("写入 .env 失败：%w", err)
	}
	return nil
}
