package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// ContentBackend 内容存储后端.
type ContentBackend string

const (
	ContentLocal ContentBackend = "local"
	ContentS3    ContentBackend = "s3"

	DefaultContentRoot       = "/tmp/files_manager" // 本地内容根目录
	DefaultContentCacheBytes = 64 << 20             // 读缓存容量 64MB，0 表示关闭

	DefaultS3Endpoint        = "localhost:9000"
	DefaultS3AccessKeyID     = "minioadmin"
	DefaultS3SecretAccessKey = "minioadmin"
	DefaultS3BucketName      = "files-manager"
	DefaultS3Region          = "us-east-1"
)

// ContentConfig 文件内容存储配置.
type ContentConfig struct {
	Backend    ContentBackend `mapstructure:"backend"     rule:"oneof=local s3"`
	Root       string         `mapstructure:"root"        rule:"required"`
	CacheBytes int64          `mapstructure:"cache_bytes" rule:"min=0"`
	S3         S3Config       `mapstructure:"s3"`
}

// S3Config MinIO S3存储配置，Root 作为对象前缀使用.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

func (c *ContentConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("content.backend", ContentLocal)
	v.SetDefault("content.root", DefaultContentRoot)
	v.SetDefault("content.cache_bytes", DefaultContentCacheBytes)

	v.SetDefault("content.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("content.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("content.s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("content.s3.use_ssl", false)
	v.SetDefault("content.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("content.s3.region", DefaultS3Region)
}
