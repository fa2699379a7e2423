package configs

// AppName 应用名称.
const AppName = "filevault"

// AppVersion 应用版本，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"
