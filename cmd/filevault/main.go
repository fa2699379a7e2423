// Package main 启动 filevault.
package main

import (
	"os"

	"github.com/yeisme/filevault/pkg/cmd"
)

//	@title			filevault API
//	@version		0.1.0
//	@description	filevault 是一个多租户文件存储服务，提供用户注册、令牌登录、文件夹层级、公开/私有访问与图片缩略图.

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@securityDefinitions.apikey	Token
//	@in							header
//	@name						X-Token

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
