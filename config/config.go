// Package config 站点配置信息
package config

// Initialize 触发加载本目录下其他文件中的 init 方法
func Initialize() {
}
