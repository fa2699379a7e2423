package queue

// 后台任务主题.
const (
	TopicThumbnail = "fm.file.thumbnail" // 图片上传后生成缩略图
	TopicWelcome   = "fm.user.welcome"   // 新用户注册后的欢迎任务
)

// Topics 返回全部任务主题，供 worker 订阅使用.
func Topics() []string {
	return []string{TopicThumbnail, TopicWelcome}
}
