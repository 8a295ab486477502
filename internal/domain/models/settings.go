package models

import "strings"

// PrivateSettingPrefix marks keys that are never exposed publicly.
const PrivateSettingPrefix = "private."

type SiteSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func IsPublicSetting(key string) bool {
	return !strings.HasPrefix(key, PrivateSettingPrefix)
}
