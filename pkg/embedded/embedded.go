// Package embedded 提供嵌入配置数据的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让 config 包可以读取嵌入的 data/ 文件。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	initialized bool
)

// Init 初始化数据文件系统
// 必须在 main() 开始时、任何配置加载之前调用
// 参数接受 fs.FS，测试中可以传入 fstest.MapFS
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径并检查前缀
func normalize(path string) (string, error) {
	if !initialized {
		return "", fmt.Errorf("embedded package not initialized, call Init() first")
	}

	// embed.FS 使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// ReadFile 读取嵌入的数据文件
// 路径必须以 "data/" 开头
func ReadFile(path string) ([]byte, error) {
	p, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在于嵌入文件系统中
func Exists(path string) bool {
	p, err := normalize(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// Glob 在嵌入文件系统中匹配文件
func Glob(pattern string) ([]string, error) {
	p, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, p)
}
