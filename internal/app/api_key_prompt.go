package app

import (
	"fmt"
	"strings"

	"lyricsheet/internal/config"
)

// ensureAPIKey looks up keyName in the environment, then in the .env file.
func ensureAPIKey(paths *config.Paths, keyName string) (string, error) {
	keyName = strings.TrimSpace(keyName)
	if keyName == "" {
		keyName = "OPENROUTER_API_KEY"
	}
	key := config.LookupKey(paths.EnvPath, keyName)
	if key == "" {
		return "", fmt.Errorf("尚未配置 API KEY（%s）\n执行：lyricsheet set key <api_key>", keyName)
	}
	return key, nil
}
