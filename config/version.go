package config

import "fmt"

var (
	Version    string = "dev"
	CommitHash string = ""
	BuildTime  string = ""
)

// IsProduction 生产环境：Version 为 "release" 且 CommitHash 不为空
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return Version == "dev"
}

// VersionString 用于 --version 与 /version 输出
func VersionString() string {
	if CommitHash == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitHash)
}
